// Package cache keeps recent extraction results in memory so that
// rapid repeated parse requests are served without burning another
// browser session against the target site.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/sidnevart/commercial-real-estate-analysis/scraper"
)

// entry holds a cached run result with its creation timestamp.
type entry struct {
	result    *scraper.Result
	createdAt time.Time
}

// Cache is a simple in-memory cache for extraction results.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict entries older
// than 1 hour.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}

	go c.cleanupLoop()
	return c
}

// Key derives a cache key from the run parameters that shape its
// output: the deal type and the entry list.
func Key(dealType string, entryURLs []string) string {
	h := sha256.New()
	h.Write([]byte(dealType))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(entryURLs, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result if it exists and is younger than
// maxAge. If maxAge <= 0, no lookup is performed.
func (c *Cache) Get(key string, maxAge time.Duration) (*scraper.Result, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > maxAge {
		return nil, false
	}
	return e.result, true
}

// Set stores a run result. If the cache is at capacity, a random entry
// is evicted to make room.
func (c *Cache) Set(key string, result *scraper.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Map iteration order is random in Go, so this evicts a random entry.
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		result:    result,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
