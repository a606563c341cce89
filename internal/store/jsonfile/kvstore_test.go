package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/prefs"
)

func TestKVStore_SetAndGet(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, prefs.KeySortMode, "size"))

	entry, err := store.Get(ctx, prefs.KeySortMode)
	require.NoError(t, err)

	assert.Equal(t, prefs.KeySortMode, entry.Key)
	assert.Equal(t, "size", entry.Value)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.False(t, entry.UpdatedAt.IsZero())
}

func TestKVStore_GetNotFound(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))

	_, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, prefs.ErrKeyNotFound)
}

func TestKVStore_UpdatePreservesCreatedAt(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Set(ctx, prefs.KeyShowProvisional, "true"))

	store.now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, store.Set(ctx, prefs.KeyShowProvisional, "false"))

	entry, err := store.Get(ctx, prefs.KeyShowProvisional)
	require.NoError(t, err)
	assert.Equal(t, "false", entry.Value)
	assert.True(t, entry.CreatedAt.Equal(base))
	assert.True(t, entry.UpdatedAt.Equal(base.Add(time.Hour)))
}

func TestKVStore_ListByPrefix(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "show_provisional", "true"))
	require.NoError(t, store.Set(ctx, "show_ignored_updates", "false"))
	require.NoError(t, store.Set(ctx, "install_sort_type", "name"))

	entries, err := store.List(ctx, "show_")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "show_ignored_updates", entries[0].Key, "entries are sorted by key")

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestKVStore_Delete(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "value"))
	require.NoError(t, store.Delete(ctx, "key"))

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, prefs.ErrKeyNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "key"), prefs.ErrKeyNotFound)
}

func TestKVStore_Watch(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, prefs.KeySortMode, "name"))
	initial, err := store.Get(ctx, prefs.KeySortMode)
	require.NoError(t, err)

	done := make(chan struct{})
	var (
		watched  prefs.Entry
		watchErr error
	)
	go func() {
		watched, watchErr = store.Watch(ctx, prefs.KeySortMode, initial.UpdatedAt, 5*time.Second)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	store.now = func() time.Time { return initial.UpdatedAt.Add(time.Second) }
	require.NoError(t, store.Set(ctx, prefs.KeySortMode, "installdate"))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Watch timed out")
	}

	require.NoError(t, watchErr)
	assert.Equal(t, "installdate", watched.Value)
}

func TestKVStore_WatchTimeout(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))

	_, err := store.Watch(context.Background(), "nonexistent", time.Now(), 100*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKVStore_WatchContextCancellation(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		_, err := store.Watch(ctx, "key", time.Now(), 30*time.Second)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not respond to context cancellation")
	}
}

func TestKVStore_ConcurrentAccess(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "prefs.json"))
	ctx := context.Background()

	const (
		goroutines = 8
		iterations = 10
	)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				if err := store.Set(ctx, key, "value"); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if _, err := store.Get(ctx, key); err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	entries, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, entries, goroutines*iterations)
}

func TestKVStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{invalid json"), 0o644))

	store := NewKVStore(path)
	ctx := context.Background()

	_, err := store.Get(ctx, "any")
	assert.Error(t, err)

	assert.Error(t, store.Set(ctx, "key", "value"), "Set must not overwrite a file it cannot read")
}
