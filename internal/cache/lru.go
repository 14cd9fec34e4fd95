package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

type entry struct {
	key        string
	value      any
	insertedAt time.Time
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Capacity      int     `json:"capacity"`
	Size          int     `json:"size"`
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Evictions     uint64  `json:"evictions"`
	HitRate       float64 `json:"hit_rate"`
	TotalRequests uint64  `json:"total_requests"`
}

// LRU is a fixed-capacity cache with TTL expiry. Entries expire ttl after
// insertion and are purged on access. All operations share one lock.
type LRU struct {
	capacity int
	ttl      time.Duration

	mu    sync.Mutex
	ll    *list.List // front = most recently used
	items map[string]*list.Element

	hits      uint64
	misses    uint64
	evictions uint64

	now func() time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	return &LRU{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get returns the cached value for key. An absent or expired key is a miss;
// a hit marks the entry most recently used.
func (c *LRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	ent := elem.Value.(*entry)
	if c.now().Sub(ent.insertedAt) > c.ttl {
		c.ll.Remove(elem)
		delete(c.items, key)
		c.misses++
		return nil, false
	}

	c.ll.MoveToFront(elem)
	c.hits++
	return ent.value, true
}

// Put inserts or overwrites key. Overwriting refreshes the entry's age and
// recency without counting an eviction; a new key at capacity evicts the
// least recently used entry first.
func (c *LRU) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.insertedAt = c.now()
		c.ll.MoveToFront(elem)
		return
	}

	if c.ll.Len() >= c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
			c.evictions++
		}
	}

	elem := c.ll.PushFront(&entry{key: key, value: value, insertedAt: c.now()})
	c.items[key] = elem
}

// Clear drops every entry. Counters are kept.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// RemovePrefix drops every entry whose key starts with prefix and returns
// how many were removed. Removals are not counted as evictions.
func (c *LRU) RemovePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.ll.Remove(elem)
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return Stats{
		Capacity:      c.capacity,
		Size:          c.ll.Len(),
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		HitRate:       hitRate,
		TotalRequests: total,
	}
}

func (c *LRU) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}
