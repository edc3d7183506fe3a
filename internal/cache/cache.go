// Package cache holds the most recent extraction per URL so repeat visits
// can show something instantly while a fresh resolution races in the
// background. Capacity is bounded; eviction keeps the most recently fetched
// entries.
package cache

import (
	"sort"
	"sync"

	"github.com/masato-nasu/pocketbridge/internal/article"
)

// DefaultMaxEntries matches the persisted-store budget of the original app.
const DefaultMaxEntries = 10

// Cache is a recency-bounded article cache keyed by canonical URL.
type Cache struct {
	mu      sync.Mutex
	entries map[string]article.Article
	max     int
}

// New returns a cache holding at most maxEntries articles; values below 1
// fall back to DefaultMaxEntries.
func New(maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{entries: make(map[string]article.Article), max: maxEntries}
}

// Get is a pure lookup; it never blocks on I/O and never triggers a fetch.
func (c *Cache) Get(url string) (article.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[url]
	return a, ok
}

// Put overwrites any existing entry for the article's URL, then enforces
// capacity: entries are ranked by FetchedAt descending and only the newest
// survive. The cache never exceeds its capacity once Put returns.
func (c *Cache) Put(a article.Article) {
	if a.URL == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[a.URL] = a
	c.prune()
}

// Len reports the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot copies the current entries for persistence.
func (c *Cache) Snapshot() map[string]article.Article {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]article.Article, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Restore replaces the contents with a persisted snapshot, applying the same
// capacity bound as Put.
func (c *Cache) Restore(entries map[string]article.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]article.Article, len(entries))
	for k, v := range entries {
		if k != "" {
			c.entries[k] = v
		}
	}
	c.prune()
}

// prune drops everything but the max most recently fetched entries.
// Callers hold c.mu.
func (c *Cache) prune() {
	if len(c.entries) <= c.max {
		return
	}
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].FetchedAt.After(c.entries[keys[j]].FetchedAt)
	})
	for _, k := range keys[c.max:] {
		delete(c.entries, k)
	}
}
