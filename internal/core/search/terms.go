package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parcel/internal/core/storage"
)

// DefaultMaxTerms bounds the recent searches list.
const DefaultMaxTerms = 50

// TermsStore persists recent search terms, newest first.
type TermsStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, terms []string) error
}

// Terms is the recent searches list shown on the search page while the
// query is empty. Terms are unique and ordered newest first.
type Terms struct {
	mu    sync.RWMutex
	terms []string
	max   int
	store TermsStore
	log   zerolog.Logger
}

// NewTerms loads the recent searches from store. An unreadable store
// starts empty.
func NewTerms(ctx context.Context, store TermsStore, max int, log zerolog.Logger) *Terms {
	if max <= 0 {
		max = DefaultMaxTerms
	}

	t := &Terms{store: store, max: max, log: log}

	terms, err := store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("search history unreadable, starting empty")
	}
	if len(terms) > max {
		terms = terms[:max]
	}
	t.terms = terms

	return t
}

// Add records term as the newest search. A term already present moves to
// the front.
func (t *Terms) Add(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.terms = slices.DeleteFunc(t.terms, func(s string) bool { return s == term })
	t.terms = slices.Insert(t.terms, 0, term)
	if len(t.terms) > t.max {
		t.terms = t.terms[:t.max]
	}

	return t.persist(ctx)
}

// Remove drops term from the list.
func (t *Terms) Remove(ctx context.Context, term string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := len(t.terms)
	t.terms = slices.DeleteFunc(t.terms, func(s string) bool { return s == term })
	if len(t.terms) == before {
		return nil
	}

	return t.persist(ctx)
}

// Clear empties the list.
func (t *Terms) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.terms = nil
	return t.persist(ctx)
}

// List returns the terms, newest first.
func (t *Terms) List() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Clone(t.terms)
}

func (t *Terms) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.terms)
}

func (t *Terms) persist(ctx context.Context) error {
	if err := t.store.Save(ctx, t.terms); err != nil {
		t.log.Warn().Err(err).Msg("failed to save search history")
		return fmt.Errorf("%w: %w", storage.ErrWrite, err)
	}
	return nil
}
