package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/catalog"
)

func TestQueryCache(t *testing.T) {
	cache := NewQueryCache()

	_, ok := cache.Get("foo")
	assert.False(t, ok)

	gen := cache.Generation()
	require.True(t, cache.Put(gen, "Foo", []catalog.Package{{ID: "foo"}}))

	pkgs, ok := cache.Get("fOO")
	require.True(t, ok, "keys are case-insensitive")
	assert.Equal(t, "foo", pkgs[0].ID)

	cache.Put(gen, "", nil)
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, ok = cache.Get("foo")
	assert.False(t, ok)
}

func TestQueryCache_PutAfterClearIsDropped(t *testing.T) {
	cache := NewQueryCache()

	gen := cache.Generation()
	cache.Clear()

	assert.False(t, cache.Put(gen, "foo", []catalog.Package{{ID: "old"}}))
	_, ok := cache.Get("foo")
	assert.False(t, ok)

	assert.True(t, cache.Put(cache.Generation(), "foo", []catalog.Package{{ID: "new"}}))
	pkgs, ok := cache.Get("foo")
	require.True(t, ok)
	assert.Equal(t, "new", pkgs[0].ID)
}
