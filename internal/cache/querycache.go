package cache

import (
	"fmt"
	"strings"
	"time"
)

// QueryCache caches paginated search results in front of the ranker. A miss
// or any cache problem is never an error; callers fall back to live ranking.
type QueryCache struct {
	lru *LRU
}

func NewQueryCache(capacity int, ttl time.Duration) *QueryCache {
	return &QueryCache{lru: NewLRU(capacity, ttl)}
}

func makeKey(query string, page, pageSize int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%s:%d:%d", normalized, page, pageSize)
}

func (qc *QueryCache) GetResults(query string, page, pageSize int) (any, bool) {
	return qc.lru.Get(makeKey(query, page, pageSize))
}

func (qc *QueryCache) CacheResults(query string, results any, page, pageSize int) {
	qc.lru.Put(makeKey(query, page, pageSize), results)
}

// Invalidate removes every cached page for query.
func (qc *QueryCache) Invalidate(query string) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	qc.lru.RemovePrefix(normalized + ":")
}

// InvalidateAll clears the whole cache.
func (qc *QueryCache) InvalidateAll() {
	qc.lru.Clear()
}

func (qc *QueryCache) Stats() Stats {
	return qc.lru.Stats()
}

func (qc *QueryCache) ResetStats() {
	qc.lru.ResetStats()
}
