package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/hay-kot/parcel/internal/core/history"
	"github.com/hay-kot/parcel/internal/core/storage"
)

// historyFile is the root JSON structure stored on disk.
type historyFile struct {
	Entries []history.Entry `json:"entries"`
}

// HistoryStore implements history.Store using a JSON file for persistence.
type HistoryStore struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewHistoryStore creates a new JSON file history store at the given path.
// maxEntries limits stored entries (0 means unlimited).
func NewHistoryStore(path string, maxEntries int) *HistoryStore {
	return &HistoryStore{path: path, maxEntries: maxEntries}
}

// Load returns the stored entries in insertion order.
// Returns no entries if the file doesn't exist.
func (s *HistoryStore) Load(ctx context.Context) ([]history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read history file: %w", storage.ErrRead, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var f historyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: history file corrupted (run 'parcel history --clear' to reset): %w", storage.ErrRead, err)
	}

	return f.Entries, nil
}

// Save writes entries to disk, keeping only the newest maxEntries.
func (s *HistoryStore) Save(ctx context.Context, entries []history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxEntries > 0 && len(entries) > s.maxEntries {
		entries = entries[len(entries)-s.maxEntries:]
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	return writeJSON(s.path, historyFile{Entries: entries})
}
