package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the durable index and link-graph store. Writes (crawl flushes, bulk
// PageRank updates) are serialized behind a mutex; reads may run
// concurrently thanks to WAL mode.
type DB struct {
	db      *sql.DB
	writeMu sync.Mutex
}

type Document struct {
	ID       int64
	URL      string
	Title    string
	PageRank float64
}

type SearchResult struct {
	URL      string
	Title    string
	PageRank float64
}

// TermPosting is one inverted-index row joined with its document.
type TermPosting struct {
	DocID    int64
	URL      string
	Title    string
	PageRank float64
	Weight   int
}

type Statistics struct {
	Terms     int `json:"terms"`
	Documents int `json:"documents"`
	Postings  int `json:"postings"`
	Links     int `json:"links"`
}

func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &DB{db: db}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return store, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

// GetOrCreateTermID returns the stable id for term, assigning one on first
// sighting. Inserting an existing term returns the existing id.
func (s *DB) GetOrCreateTermID(term string) (int64, error) {
	var termID int64
	err := s.db.QueryRow("SELECT term_id FROM terms WHERE term = ?", term).Scan(&termID)
	if err == nil {
		return termID, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.Exec("INSERT OR IGNORE INTO terms (term) VALUES (?)", term)
	if err != nil {
		return 0, err
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return result.LastInsertId()
	}

	// Lost the race; another writer inserted it first.
	err = s.db.QueryRow("SELECT term_id FROM terms WHERE term = ?", term).Scan(&termID)
	return termID, err
}

// LookupTermID returns the id for term if it has one.
func (s *DB) LookupTermID(term string) (int64, bool, error) {
	var termID int64
	err := s.db.QueryRow("SELECT term_id FROM terms WHERE term = ?", term).Scan(&termID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return termID, true, nil
}

// GetOrCreateDocumentID returns the stable id for a canonical URL, assigning
// one on first sighting.
func (s *DB) GetOrCreateDocumentID(url string) (int64, error) {
	var docID int64
	err := s.db.QueryRow("SELECT doc_id FROM documents WHERE url = ?", url).Scan(&docID)
	if err == nil {
		return docID, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.Exec("INSERT OR IGNORE INTO documents (url) VALUES (?)", url)
	if err != nil {
		return 0, err
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return result.LastInsertId()
	}

	err = s.db.QueryRow("SELECT doc_id FROM documents WHERE url = ?", url).Scan(&docID)
	return docID, err
}

// SetDocumentTitle records the title the first time one is parsed for the
// document. Later calls are no-ops.
func (s *DB) SetDocumentTitle(docID int64, title string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.Exec(
		"UPDATE documents SET title = ? WHERE doc_id = ? AND title = ''",
		title, docID,
	)
	return err
}

func (s *DB) GetDocument(docID int64) (*Document, error) {
	doc := &Document{}
	err := s.db.QueryRow(
		"SELECT doc_id, url, title, page_rank FROM documents WHERE doc_id = ?",
		docID,
	).Scan(&doc.ID, &doc.URL, &doc.Title, &doc.PageRank)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// SavePostings flushes the accumulated term weights for one document in a
// single transaction. Re-flushing a (term, document) pair updates its weight
// instead of duplicating the row.
func (s *DB) SavePostings(docID int64, weights map[int64]int) error {
	if len(weights) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO postings (term_id, doc_id, weight) VALUES (?, ?, ?)
		ON CONFLICT(term_id, doc_id) DO UPDATE SET weight = excluded.weight
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for termID, weight := range weights {
		if _, err := stmt.Exec(termID, docID, weight); err != nil {
			return fmt.Errorf("failed to save posting for term %d: %w", termID, err)
		}
	}

	return tx.Commit()
}

// InsertLink records a directed edge. Duplicate discovery is a no-op.
func (s *DB) InsertLink(fromDocID, toDocID int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO links (from_doc_id, to_doc_id) VALUES (?, ?)",
		fromDocID, toDocID,
	)
	return err
}

// SearchTerm returns documents containing term ordered by importance score
// descending.
func (s *DB) SearchTerm(term string, limit, offset int) ([]SearchResult, error) {
	rows, err := s.db.Query(`
		SELECT d.url, d.title, d.page_rank
		FROM documents d
		JOIN postings p ON d.doc_id = p.doc_id
		JOIN terms t ON p.term_id = t.term_id
		WHERE t.term = ?
		ORDER BY d.page_rank DESC, d.doc_id ASC
		LIMIT ? OFFSET ?
	`, term, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.URL, &r.Title, &r.PageRank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetLinkGraph returns the adjacency map doc_id -> outbound doc_ids.
func (s *DB) GetLinkGraph() (map[int64][]int64, error) {
	rows, err := s.db.Query("SELECT from_doc_id, to_doc_id FROM links")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	graph := make(map[int64][]int64)
	for rows.Next() {
		var from, to int64
		if err := rows.Scan(&from, &to); err != nil {
			return nil, err
		}
		graph[from] = append(graph[from], to)
	}
	return graph, rows.Err()
}

// UpdatePageRanks overwrites importance scores in bulk. The update is a
// single transaction so readers never observe a half-applied pass.
func (s *DB) UpdatePageRanks(scores map[int64]float64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE documents SET page_rank = ? WHERE doc_id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for docID, score := range scores {
		if _, err := stmt.Exec(score, docID); err != nil {
			return fmt.Errorf("failed to update page rank for doc %d: %w", docID, err)
		}
	}

	return tx.Commit()
}

func (s *DB) GetStatistics() (Statistics, error) {
	var stats Statistics
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM terms", &stats.Terms},
		{"SELECT COUNT(*) FROM documents", &stats.Documents},
		{"SELECT COUNT(*) FROM postings", &stats.Postings},
		{"SELECT COUNT(*) FROM links", &stats.Links},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return Statistics{}, err
		}
	}
	return stats, nil
}

func (s *DB) DocumentCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count)
	return count, err
}

// DocumentFrequency returns how many documents contain the term.
func (s *DB) DocumentFrequency(termID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(DISTINCT doc_id) FROM postings WHERE term_id = ?",
		termID,
	).Scan(&count)
	return count, err
}

// UniqueTermCount returns how many distinct terms a document contains.
func (s *DB) UniqueTermCount(docID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM postings WHERE doc_id = ?",
		docID,
	).Scan(&count)
	return count, err
}

// PostingsForTerm returns every document containing the term, joined with
// the document row, in doc_id order.
func (s *DB) PostingsForTerm(termID int64) ([]TermPosting, error) {
	rows, err := s.db.Query(`
		SELECT d.doc_id, d.url, d.title, d.page_rank, p.weight
		FROM documents d
		JOIN postings p ON d.doc_id = p.doc_id
		WHERE p.term_id = ?
		ORDER BY d.doc_id ASC
	`, termID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []TermPosting
	for rows.Next() {
		var p TermPosting
		if err := rows.Scan(&p.DocID, &p.URL, &p.Title, &p.PageRank, &p.Weight); err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// PostingWeight returns the emphasis weight for a (term, document) pair.
func (s *DB) PostingWeight(termID, docID int64) (int, bool, error) {
	var weight int
	err := s.db.QueryRow(
		"SELECT weight FROM postings WHERE term_id = ? AND doc_id = ?",
		termID, docID,
	).Scan(&weight)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return weight, true, nil
}

// DocumentsWithAllTerms returns ids of documents containing every given
// term, in doc_id order.
func (s *DB) DocumentsWithAllTerms(termIDs []int64) ([]int64, error) {
	if len(termIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT doc_id
		FROM postings
		WHERE term_id IN (%s)
		GROUP BY doc_id
		HAVING COUNT(DISTINCT term_id) = ?
		ORDER BY doc_id ASC
	`, placeholders(len(termIDs)))

	args := termArgs(termIDs)
	args = append(args, len(termIDs))
	return s.queryDocIDs(query, args...)
}

// DocumentsWithAnyTerm returns ids of documents containing at least one of
// the given terms, in doc_id order.
func (s *DB) DocumentsWithAnyTerm(termIDs []int64) ([]int64, error) {
	if len(termIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT DISTINCT doc_id
		FROM postings
		WHERE term_id IN (%s)
		ORDER BY doc_id ASC
	`, placeholders(len(termIDs)))

	return s.queryDocIDs(query, termArgs(termIDs)...)
}

func (s *DB) queryDocIDs(query string, args ...any) ([]int64, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func termArgs(termIDs []int64) []any {
	args := make([]any, 0, len(termIDs)+1)
	for _, id := range termIDs {
		args = append(args, id)
	}
	return args
}
