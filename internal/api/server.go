package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"websearch/internal/cache"
	"websearch/internal/ranker"
	"websearch/internal/snippet"
	"websearch/internal/storage"
	"websearch/internal/tokenizer"
)

// Server is the HTTP serving layer: cache in front of the ranker in front
// of the store. It is safe for concurrent use.
type Server struct {
	store      *storage.DB
	ranker     *ranker.Ranker
	queryCache *cache.QueryCache
	tokenizer  *tokenizer.Tokenizer
	snippets   *snippet.Generator

	defaultPageSize int
	httpSrv         *http.Server
}

func NewServer(store *storage.DB, rk *ranker.Ranker, qc *cache.QueryCache, tok *tokenizer.Tokenizer, defaultPageSize int) *Server {
	return &Server{
		store:           store,
		ranker:          rk,
		queryCache:      qc,
		tokenizer:       tok,
		snippets:        snippet.New(200, 10),
		defaultPageSize: defaultPageSize,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/search", s.handleSearch)
	r.Get("/stats", s.handleStats)
	r.Post("/cache/invalidate", s.handleInvalidate)

	return r
}

func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("Search API listening on %s", addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
