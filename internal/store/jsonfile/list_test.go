package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/storage"
)

func TestListStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		ids, err := NewListStore(filepath.Join(t.TempDir(), "wishlist.json")).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("preserves order", func(t *testing.T) {
		store := NewListStore(filepath.Join(t.TempDir(), "nested", "wishlist.json"))

		require.NoError(t, store.Save(ctx, []string{"zeta", "alpha", "mid"}))

		ids, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, ids)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wishlist.json")
		require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))

		_, err := NewListStore(path).Load(ctx)
		assert.ErrorIs(t, err, storage.ErrRead)
	})
}
