// Package wishlist tracks packages the user wants to install later.
package wishlist

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parcel/internal/core/notify"
	"github.com/hay-kot/parcel/internal/core/storage"
)

// Store persists the ordered wishlist.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// Wishlist is an ordered set of package ids. Installed packages are
// removed each time ReloadData runs.
type Wishlist struct {
	mu       sync.RWMutex
	ids      []string
	store    Store
	notifier notify.Notifier
	log      zerolog.Logger
}

// New creates a Wishlist and reconciles it against installed.
func New(ctx context.Context, store Store, installed map[string]bool, notifier notify.Notifier, log zerolog.Logger) *Wishlist {
	if notifier == nil {
		notifier = notify.Discard
	}
	w := &Wishlist{store: store, notifier: notifier, log: log}
	w.ReloadData(ctx, installed)
	return w
}

// ReloadData re-reads the store and drops every id present in installed.
// Repeated ids keep their first position. An unreadable store yields an
// empty wishlist.
func (w *Wishlist) ReloadData(ctx context.Context, installed map[string]bool) {
	stored, err := w.store.Load(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("wishlist unreadable, starting empty")
		stored = nil
	}

	seen := make(map[string]bool, len(stored))
	ids := make([]string, 0, len(stored))
	for _, id := range stored {
		if installed[id] || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	w.mu.Lock()
	w.ids = ids
	w.mu.Unlock()
}

// IsInWishlist reports whether id is on the wishlist.
func (w *Wishlist) IsInWishlist(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Contains(w.ids, id)
}

// List returns the wishlist in insertion order.
func (w *Wishlist) List() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.ids)
}

// Add appends id. It returns false without changes when id is already
// present. A write failure is returned wrapped in storage.ErrWrite while
// the in-memory list keeps the addition.
func (w *Wishlist) Add(ctx context.Context, id string) (bool, error) {
	w.mu.Lock()
	if slices.Contains(w.ids, id) {
		w.mu.Unlock()
		return false, nil
	}
	w.ids = append(w.ids, id)
	err := w.persist(ctx)
	w.mu.Unlock()

	w.notifier.Publish(notify.WishlistChanged)
	return true, err
}

// Remove deletes id from the wishlist.
func (w *Wishlist) Remove(ctx context.Context, id string) error {
	w.mu.Lock()
	w.ids = slices.DeleteFunc(w.ids, func(existing string) bool { return existing == id })
	err := w.persist(ctx)
	w.mu.Unlock()

	w.notifier.Publish(notify.WishlistChanged)
	return err
}

// persist writes the full list. Caller must hold w.mu.
func (w *Wishlist) persist(ctx context.Context) error {
	if err := w.store.Save(ctx, slices.Clone(w.ids)); err != nil {
		w.log.Warn().Err(err).Msg("failed to save wishlist")
		return fmt.Errorf("%w: %w", storage.ErrWrite, err)
	}
	return nil
}
