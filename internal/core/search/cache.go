package search

import (
	"slices"
	"strings"
	"sync"

	"github.com/hay-kot/parcel/internal/core/catalog"
)

// QueryCache memoizes computed package lists by lower-cased query. The
// empty key holds the unfiltered list. It is only ever cleared wholesale;
// every Clear starts a new generation, and results computed during an
// older generation are not stored.
type QueryCache struct {
	mu      sync.Mutex
	gen     uint64
	entries map[string][]catalog.Package
}

func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string][]catalog.Package)}
}

func cacheKey(query string) string {
	return strings.ToLower(query)
}

// Get returns the cached list for query.
func (c *QueryCache) Get(query string) ([]catalog.Package, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pkgs, ok := c.entries[cacheKey(query)]
	return pkgs, ok
}

// Generation returns the current generation. Read it before computing a
// result that will be passed to Put.
func (c *QueryCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gen
}

// Put stores pkgs under query if the cache was not cleared since gen was
// read. It reports whether the entry was stored.
func (c *QueryCache) Put(gen uint64, query string, pkgs []catalog.Package) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	c.entries[cacheKey(query)] = slices.Clone(pkgs)
	return true
}

// Clear drops every entry and starts a new generation.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.gen++
}

func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
