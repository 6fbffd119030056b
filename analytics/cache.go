package analytics

import (
	"sync"
	"time"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

// CacheTTL bounds how often a full aggregation runs for any single app.
const CacheTTL = 5 * time.Minute

type cacheEntry struct {
	data       shared.AnalyticsData
	computedAt time.Time
}

// Cache memoizes the last computed AnalyticsData per app ID for CacheTTL.
// The key space is bounded by the number of apps, so there is no eviction
// beyond TTL expiry. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if it is still within TTL.
func (c *Cache) Get(key string) (shared.AnalyticsData, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.computedAt) >= c.ttl {
		return shared.AnalyticsData{}, false
	}
	return entry.data, true
}

// Set stores a freshly computed value, replacing any previous entry whole.
func (c *Cache) Set(key string, data shared.AnalyticsData) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, computedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops the entry for one app.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
