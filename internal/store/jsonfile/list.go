package jsonfile

import (
	"context"
	"fmt"
	"sync"

	"github.com/hay-kot/parcel/internal/core/storage"
)

// idListFile is the root JSON structure for ordered string lists.
type idListFile struct {
	IDs []string `json:"ids"`
}

// ListStore persists an ordered list of strings. It backs both the
// wishlist and the recent search terms.
type ListStore struct {
	path string
	mu   sync.Mutex
}

// NewListStore creates a list store at the given path.
func NewListStore(path string) *ListStore {
	return &ListStore{path: path}
}

// Load returns the stored list. Returns an empty list if the file doesn't exist.
func (s *ListStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var f idListFile
	if _, err := readJSON(s.path, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrRead, err)
	}

	return f.IDs, nil
}

// Save replaces the stored list.
func (s *ListStore) Save(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ids == nil {
		ids = []string{}
	}

	return writeJSON(s.path, idListFile{IDs: ids})
}
