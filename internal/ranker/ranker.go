package ranker

import (
	"math"
	"sort"
	"strings"

	"websearch/internal/crawler"
	"websearch/internal/storage"
)

// Weights are the combination factors for the ranking signals. They are
// untuned heuristics, kept configurable on purpose.
type Weights struct {
	TFIDF      float64
	PageRank   float64
	TitleMatch float64
	Emphasis   float64
}

func DefaultWeights() Weights {
	return Weights{
		TFIDF:      0.4,
		PageRank:   0.3,
		TitleMatch: 0.2,
		Emphasis:   0.1,
	}
}

type Config struct {
	Weights Weights

	// PageRankCap divides importance scores before clamping to [0, 1].
	PageRankCap float64

	// MaxWeight is the largest attainable posting weight, used to
	// normalize emphasis scores.
	MaxWeight int
}

func DefaultConfig() Config {
	return Config{
		Weights:     DefaultWeights(),
		PageRankCap: 10,
		MaxWeight:   crawler.MaxTagWeight,
	}
}

// Result is one ranked document.
type Result struct {
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	PageRank float64 `json:"page_rank"`
}

// Ranker combines store-held signals (postings, titles, importance scores)
// into per-query relevance scores.
type Ranker struct {
	store *storage.DB
	cfg   Config
}

func New(store *storage.DB, cfg Config) *Ranker {
	return &Ranker{store: store, cfg: cfg}
}

// RankSingleTerm scores every document containing term and returns up to
// limit results, best first. An unknown term yields an empty result, not an
// error.
func (r *Ranker) RankSingleTerm(term string, limit int) ([]Result, error) {
	termID, ok, err := r.store.LookupTermID(term)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	idf, err := r.idf(termID)
	if err != nil {
		return nil, err
	}

	postings, err := r.store.PostingsForTerm(termID)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(postings))
	for _, p := range postings {
		tf, err := r.tf(p.DocID)
		if err != nil {
			return nil, err
		}

		titleMatch := 0.0
		if titleContains(p.Title, term) {
			titleMatch = 1.0
		}

		score := r.combine(tf*idf, p.PageRank, titleMatch, r.emphasis(p.Weight))
		results = append(results, Result{
			URL:      p.URL,
			Title:    p.Title,
			Score:    score,
			PageRank: p.PageRank,
		})
	}

	sortAndTrim(&results, limit)
	return results, nil
}

// RankMultiTerm scores documents for a multi-term query. Documents
// containing every term are preferred; if none exist, documents containing
// any term are scored instead. Signal components are averaged across the
// query terms, with absent terms contributing zero.
func (r *Ranker) RankMultiTerm(terms []string, limit int) ([]Result, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if len(terms) == 1 {
		return r.RankSingleTerm(terms[0], limit)
	}

	termIDs := make([]int64, 0, len(terms))
	termText := make(map[int64]string, len(terms))
	idfs := make(map[int64]float64, len(terms))

	for _, term := range terms {
		id, ok, err := r.store.LookupTermID(term)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		termIDs = append(termIDs, id)
		termText[id] = term
		idf, err := r.idf(id)
		if err != nil {
			return nil, err
		}
		idfs[id] = idf
	}
	if len(termIDs) == 0 {
		return nil, nil
	}

	docIDs, err := r.store.DocumentsWithAllTerms(termIDs)
	if err != nil {
		return nil, err
	}
	if len(docIDs) == 0 {
		docIDs, err = r.store.DocumentsWithAnyTerm(termIDs)
		if err != nil {
			return nil, err
		}
	}

	n := float64(len(termIDs))
	results := make([]Result, 0, len(docIDs))

	for _, docID := range docIDs {
		doc, err := r.store.GetDocument(docID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}

		var totalTFIDF, totalEmphasis, titleMatches float64

		for _, id := range termIDs {
			weight, present, err := r.store.PostingWeight(id, docID)
			if err != nil {
				return nil, err
			}
			if !present {
				continue
			}

			tf, err := r.tf(docID)
			if err != nil {
				return nil, err
			}
			totalTFIDF += tf * idfs[id]
			totalEmphasis += r.emphasis(weight)
			if titleContains(doc.Title, termText[id]) {
				titleMatches++
			}
		}

		score := r.combine(totalTFIDF/n, doc.PageRank, titleMatches/n, totalEmphasis/n)
		results = append(results, Result{
			URL:      doc.URL,
			Title:    doc.Title,
			Score:    score,
			PageRank: doc.PageRank,
		})
	}

	sortAndTrim(&results, limit)
	return results, nil
}

// idf computes ln((N+1)/(df+1)) for a term.
func (r *Ranker) idf(termID int64) (float64, error) {
	total, err := r.store.DocumentCount()
	if err != nil {
		return 0, err
	}
	df, err := r.store.DocumentFrequency(termID)
	if err != nil {
		return 0, err
	}
	return math.Log(float64(total+1) / float64(df+1)), nil
}

// tf is a term-frequency proxy: 1/(unique terms in the document + 1).
func (r *Ranker) tf(docID int64) (float64, error) {
	uniqueTerms, err := r.store.UniqueTermCount(docID)
	if err != nil {
		return 0, err
	}
	return 1.0 / float64(uniqueTerms+1), nil
}

// emphasis normalizes a posting weight against the maximum attainable tag
// weight, clamped to [0, 1].
func (r *Ranker) emphasis(weight int) float64 {
	score := float64(weight) / float64(r.cfg.MaxWeight)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (r *Ranker) combine(tfidf, pageRank, titleMatch, emphasis float64) float64 {
	normalizedPR := math.Min(pageRank/r.cfg.PageRankCap, 1.0)
	w := r.cfg.Weights
	return w.TFIDF*tfidf + w.PageRank*normalizedPR + w.TitleMatch*titleMatch + w.Emphasis*emphasis
}

func titleContains(title, term string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(term))
}

// sortAndTrim orders results by score descending; ties keep retrieval order.
func sortAndTrim(results *[]Result, limit int) {
	sort.SliceStable(*results, func(i, j int) bool {
		return (*results)[i].Score > (*results)[j].Score
	})
	if limit > 0 && len(*results) > limit {
		*results = (*results)[:limit]
	}
}
