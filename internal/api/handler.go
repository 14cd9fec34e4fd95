package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
)

const rankLimit = 1000

type searchHit struct {
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	PageRank float64 `json:"page_rank"`
	Snippet  string  `json:"snippet"`
}

type searchResponse struct {
	Query      string      `json:"query"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalHits  int         `json:"total_hits"`
	TotalPages int         `json:"total_pages"`
	Cached     bool        `json:"cached"`
	Results    []searchHit `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	page := intParam(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := intParam(r, "page_size", s.defaultPageSize)
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}

	if cached, ok := s.queryCache.GetResults(query, page, pageSize); ok {
		if resp, ok := cached.(searchResponse); ok {
			resp.Cached = true
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	terms := s.tokenizer.Tokenize(query)
	results, err := s.ranker.RankMultiTerm(terms, rankLimit)
	if err != nil {
		log.Printf("Ranking failed for %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	totalHits := len(results)
	totalPages := (totalHits + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > totalHits {
		start = totalHits
	}
	end := start + pageSize
	if end > totalHits {
		end = totalHits
	}

	hits := make([]searchHit, 0, end-start)
	for _, res := range results[start:end] {
		hits = append(hits, searchHit{
			URL:      res.URL,
			Title:    res.Title,
			Score:    res.Score,
			PageRank: res.PageRank,
			Snippet:  s.snippets.Generate(res.Title, terms),
		})
	}

	resp := searchResponse{
		Query:      query,
		Page:       page,
		PageSize:   pageSize,
		TotalHits:  totalHits,
		TotalPages: totalPages,
		Results:    hits,
	}

	s.queryCache.CacheResults(query, resp, page, pageSize)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStatistics()
	if err != nil {
		log.Printf("Failed to load store statistics: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"index": stats,
		"cache": s.queryCache.Stats(),
	})
}

// handleInvalidate clears cached pages for ?q=..., or the whole cache when
// no query is given.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.queryCache.InvalidateAll()
	} else {
		s.queryCache.Invalidate(query)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func intParam(r *http.Request, name string, fallback int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
