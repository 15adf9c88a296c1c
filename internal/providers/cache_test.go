package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	cache := NewCache()

	_, ok := cache.Get(CategoryQuotes, "finnhub:quote:AAPL")
	assert.False(t, ok, "empty cache should miss")

	quote := &Quote{Symbol: "AAPL", Price: 150.25}
	cache.Set(CategoryQuotes, "finnhub:quote:AAPL", quote)

	got, ok := cache.Get(CategoryQuotes, "finnhub:quote:AAPL")
	require.True(t, ok)
	assert.Equal(t, quote, got)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache()
	current := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Set(CategoryQuotes, "k", "fresh")

	// Quotes carry a 15 minute TTL.
	current = current.Add(14 * time.Minute)
	_, ok := cache.Get(CategoryQuotes, "k")
	assert.True(t, ok, "entry inside TTL should hit")

	current = current.Add(2 * time.Minute)
	_, ok = cache.Get(CategoryQuotes, "k")
	assert.False(t, ok, "entry past TTL should miss")
	assert.Equal(t, 0, cache.Len(CategoryQuotes), "expired entry should be swept")
}

func TestCacheCategoryIsolation(t *testing.T) {
	cache := NewCache()
	cache.Set(CategoryQuotes, "same-key", "quote")
	cache.Set(CategoryMacroData, "same-key", "macro")

	got, ok := cache.Get(CategoryMacroData, "same-key")
	require.True(t, ok)
	assert.Equal(t, "macro", got)
}

func TestCacheStats(t *testing.T) {
	cache := NewCache()
	cache.Set(CategorySectorData, "k", 1)

	cache.Get(CategorySectorData, "k")
	cache.Get(CategorySectorData, "k")
	cache.Get(CategorySectorData, "missing")

	hits, misses := cache.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCacheCustomTTLFallback(t *testing.T) {
	cache := NewCacheWithTTLs(map[Category]time.Duration{
		CategoryQuotes: time.Minute,
	})
	current := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	// Category absent from the TTL map uses the valuation default.
	cache.Set(CategoryMacroData, "k", "v")
	current = current.Add(23 * time.Hour)
	_, ok := cache.Get(CategoryMacroData, "k")
	assert.True(t, ok)
}
