package providers

import (
	"sync"
	"time"

	"investpath/internal/infrastructure"
)

// Category names the freshness class of a cached provider response.
type Category string

const (
	CategoryQuotes              Category = "quotes"
	CategoryCompanyProfiles     Category = "company-profiles"
	CategorySectorData          Category = "sector-data"
	CategoryMacroData           Category = "macro-data"
	CategoryFinancialStatements Category = "financial-statements"
	CategoryValuationData       Category = "valuation-data"
)

// DefaultCacheTTLs are the revalidation windows per category.
var DefaultCacheTTLs = map[Category]time.Duration{
	CategoryQuotes:              15 * time.Minute,
	CategoryCompanyProfiles:     7 * 24 * time.Hour,
	CategorySectorData:          24 * time.Hour,
	CategoryMacroData:           time.Hour,
	CategoryFinancialStatements: 24 * time.Hour,
	CategoryValuationData:       24 * time.Hour,
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// Cache is a keyed TTL store for provider responses. Reads after
// expiry are misses; writes always replace. Eviction is purely by
// expiry, swept lazily on access.
type Cache struct {
	mu      sync.RWMutex
	entries map[Category]map[string]cacheEntry
	ttls    map[Category]time.Duration
	now     func() time.Time

	hits   int64
	misses int64
}

// NewCache creates a cache with the default category TTLs.
func NewCache() *Cache {
	return NewCacheWithTTLs(DefaultCacheTTLs)
}

// NewCacheWithTTLs creates a cache with explicit category TTLs.
// Categories missing from ttls fall back to the valuation default.
func NewCacheWithTTLs(ttls map[Category]time.Duration) *Cache {
	copied := make(map[Category]time.Duration, len(ttls))
	for k, v := range ttls {
		copied[k] = v
	}
	return &Cache{
		entries: make(map[Category]map[string]cacheEntry),
		ttls:    copied,
		now:     time.Now,
	}
}

// Get returns the cached value for (category, key), or ok=false on a
// miss or an expired entry.
func (c *Cache) Get(category Category, key string) (any, bool) {
	value, ok := c.lookup(category, key)
	infrastructure.ObserveCache(string(category), ok)
	return value, ok
}

func (c *Cache) lookup(category Category, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byKey, exists := c.entries[category]
	if !exists {
		c.misses++
		return nil, false
	}
	entry, exists := byKey[key]
	if !exists {
		c.misses++
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(byKey, key)
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.value, true
}

// Set stores value under (category, key), replacing any prior entry.
func (c *Cache) Set(category Category, key string, value any) {
	ttl, ok := c.ttls[category]
	if !ok {
		ttl = DefaultCacheTTLs[CategoryValuationData]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	byKey, exists := c.entries[category]
	if !exists {
		byKey = make(map[string]cacheEntry)
		c.entries[category] = byKey
	}
	byKey[key] = cacheEntry{value: value, expiresAt: c.now().Add(ttl)}
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of live entries in a category.
func (c *Cache) Len(category Category) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[category])
}
