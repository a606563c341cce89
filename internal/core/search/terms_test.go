package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/storage"
)

type memTermsStore struct {
	mu      sync.Mutex
	terms   []string
	saves   int
	loadErr error
	saveErr error
}

func (m *memTermsStore) Load(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.terms), m.loadErr
}

func (m *memTermsStore) Save(_ context.Context, terms []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.terms = slices.Clone(terms)
	return nil
}

func TestTerms_AddDedupesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := &memTermsStore{}
	terms := NewTerms(ctx, store, 0, zerolog.Nop())

	require.NoError(t, terms.Add(ctx, "tweak"))
	require.NoError(t, terms.Add(ctx, "theme"))
	require.NoError(t, terms.Add(ctx, " tweak "))

	assert.Equal(t, []string{"tweak", "theme"}, terms.List())
	assert.Equal(t, []string{"tweak", "theme"}, store.terms)
}

func TestTerms_IgnoresBlank(t *testing.T) {
	ctx := context.Background()
	store := &memTermsStore{}
	terms := NewTerms(ctx, store, 0, zerolog.Nop())

	require.NoError(t, terms.Add(ctx, "   "))
	assert.Equal(t, 0, terms.Len())
	assert.Equal(t, 0, store.saves)
}

func TestTerms_Bounded(t *testing.T) {
	ctx := context.Background()
	terms := NewTerms(ctx, &memTermsStore{}, 3, zerolog.Nop())

	for i := 0; i < 5; i++ {
		require.NoError(t, terms.Add(ctx, fmt.Sprintf("q%d", i)))
	}

	assert.Equal(t, []string{"q4", "q3", "q2"}, terms.List())
}

func TestTerms_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store := &memTermsStore{terms: []string{"a", "b", "c"}}
	terms := NewTerms(ctx, store, 0, zerolog.Nop())

	require.NoError(t, terms.Remove(ctx, "b"))
	assert.Equal(t, []string{"a", "c"}, terms.List())

	require.NoError(t, terms.Remove(ctx, "missing"))
	assert.Equal(t, 1, store.saves, "removing an absent term does not save")

	require.NoError(t, terms.Clear(ctx))
	assert.Empty(t, terms.List())
	assert.Empty(t, store.terms)
}

func TestTerms_UnreadableStoreStartsEmpty(t *testing.T) {
	store := &memTermsStore{loadErr: errors.New("boom")}
	terms := NewTerms(context.Background(), store, 0, zerolog.Nop())
	assert.Equal(t, 0, terms.Len())
}

func TestTerms_WriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := &memTermsStore{saveErr: errors.New("disk full")}
	terms := NewTerms(ctx, store, 0, zerolog.Nop())

	err := terms.Add(ctx, "tweak")
	assert.ErrorIs(t, err, storage.ErrWrite)
	assert.Equal(t, []string{"tweak"}, terms.List())
}
