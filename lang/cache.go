package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// DefaultCacheSize is the default number of sources a [Cache] retains.
var DefaultCacheSize = 256

// Cache memoizes [ParseAll] results by source text.
//
// Entries are keyed by the xxh3 hash of the source; the source itself is
// kept to resolve collisions. A parse is only reused under the nesting limit
// it was made with ([WithMaxNesting]). Failed parses are not cached. When full, the
// oldest entry is evicted. A Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	size    int
	entries map[uint64]cacheEntry
	order   []uint64 // insertion order, oldest first
	hits    int
	misses  int
}

type cacheEntry struct {
	source     string
	exprs      []Expr
	maxNesting int
}

// NewCache creates a cache holding at most size sources.
// A size of zero or less uses [DefaultCacheSize].
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}

	return &Cache{
		size:    size,
		entries: make(map[uint64]cacheEntry, size),
	}
}

// ParseAll returns the cached parse of src, parsing and storing it on a miss.
func (c *Cache) ParseAll(ctx context.Context, src string, opts ...Option) ([]Expr, error) {
	hash := xxh3.HashString(src)
	cfg := makeConfig(opts...)
	logger := cfg.logger

	c.mu.Lock()
	entry, ok := c.entries[hash]
	hit := ok && entry.source == src && entry.maxNesting == cfg.maxNesting

	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 36)),
		slog.Bool("cache_hit", hit),
	)

	if hit {
		return entry.exprs, nil
	}

	exprs, err := ParseAll(ctx, src, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[hash]; !exists {
		if len(c.order) >= c.size {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}

		c.order = append(c.order, hash)
	}

	c.entries[hash] = cacheEntry{source: src, exprs: exprs, maxNesting: cfg.maxNesting}

	return exprs, nil
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns the number of lookups that hit and missed the cache.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits, c.misses
}

// Clear removes all cached sources and resets the statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.order = nil
	c.hits, c.misses = 0, 0
}
