package ranker_test

import (
	"path/filepath"
	"testing"

	"websearch/internal/ranker"
	"websearch/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func addDocument(t *testing.T, db *storage.DB, url, title string, terms map[string]int) int64 {
	t.Helper()
	docID, err := db.GetOrCreateDocumentID(url)
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	if title != "" {
		if err := db.SetDocumentTitle(docID, title); err != nil {
			t.Fatalf("Failed to set title: %v", err)
		}
	}

	weights := make(map[int64]int, len(terms))
	for term, weight := range terms {
		termID, err := db.GetOrCreateTermID(term)
		if err != nil {
			t.Fatalf("Failed to create term: %v", err)
		}
		weights[termID] = weight
	}
	if err := db.SavePostings(docID, weights); err != nil {
		t.Fatalf("Failed to save postings: %v", err)
	}
	return docID
}

func TestRankUnknownTermReturnsEmpty(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	results, err := rk.RankSingleTerm("nosuchterm", 10)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result set, got %v", results)
	}
}

func TestTitleMatchOutranksBodyMatch(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	addDocument(t, db, "https://title.example", "Golang Guide", map[string]int{"golang": 0})
	addDocument(t, db, "https://body.example", "Some Guide", map[string]int{"golang": 0})

	results, err := rk.RankSingleTerm("golang", 10)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://title.example" {
		t.Errorf("Expected title match first, got %q", results[0].URL)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("Expected strictly higher score for title match: %f <= %f",
			results[0].Score, results[1].Score)
	}
}

func TestEmphasisWeightBreaksTie(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	addDocument(t, db, "https://plain.example", "Guide", map[string]int{"golang": 0})
	addDocument(t, db, "https://heading.example", "Guide", map[string]int{"golang": 7})

	results, err := rk.RankSingleTerm("golang", 10)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://heading.example" {
		t.Errorf("Expected emphasized document first, got %q", results[0].URL)
	}
}

func TestStableOrderOnEqualScores(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	addDocument(t, db, "https://1.example", "Guide", map[string]int{"golang": 0})
	addDocument(t, db, "https://2.example", "Guide", map[string]int{"golang": 0})

	results, err := rk.RankSingleTerm("golang", 10)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://1.example" || results[1].URL != "https://2.example" {
		t.Errorf("Expected retrieval order preserved on ties, got %v", results)
	}
}

func TestRankSingleTermLimit(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	addDocument(t, db, "https://1.example", "", map[string]int{"golang": 0})
	addDocument(t, db, "https://2.example", "", map[string]int{"golang": 0})
	addDocument(t, db, "https://3.example", "", map[string]int{"golang": 0})

	results, err := rk.RankSingleTerm("golang", 2)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected limit of 2 results, got %d", len(results))
	}
}

func TestMultiTermIntersectionPreferred(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	addDocument(t, db, "https://both.example", "Go HTTP", map[string]int{"go": 0, "http": 0})
	addDocument(t, db, "https://go-only.example", "Go", map[string]int{"go": 0})
	addDocument(t, db, "https://http-only.example", "HTTP", map[string]int{"http": 0})

	results, err := rk.RankMultiTerm([]string{"go", "http"}, 10)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected only the intersecting document, got %v", results)
	}
	if results[0].URL != "https://both.example" {
		t.Errorf("Expected the document containing all terms, got %q", results[0].URL)
	}
}

func TestMultiTermFallsBackToUnion(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	addDocument(t, db, "https://go-only.example", "Go", map[string]int{"go": 0})
	addDocument(t, db, "https://http-only.example", "HTTP", map[string]int{"http": 0})

	results, err := rk.RankMultiTerm([]string{"go", "http"}, 10)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected union fallback with 2 results, got %v", results)
	}
}

func TestMultiTermAllUnknownReturnsEmpty(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	results, err := rk.RankMultiTerm([]string{"ghost", "phantom"}, 10)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result set, got %v", results)
	}
}

func TestMultiTermIgnoresUnknownTerm(t *testing.T) {
	db := newTestDB(t)
	rk := ranker.New(db, ranker.DefaultConfig())

	addDocument(t, db, "https://go.example", "Go", map[string]int{"go": 0})

	results, err := rk.RankMultiTerm([]string{"go", "ghost"}, 10)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://go.example" {
		t.Errorf("Expected the known term to still match, got %v", results)
	}
}
