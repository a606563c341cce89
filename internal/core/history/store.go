package history

import "context"

// MaxEntries is the default number of entries kept on disk.
const MaxEntries = 1000

// Store defines persistence operations for the ledger.
type Store interface {
	// Load returns all persisted entries in insertion order. A missing
	// file is not an error. A corrupt file returns an error wrapping
	// storage.ErrRead.
	Load(ctx context.Context) ([]Entry, error)
	// Save replaces the persisted entries, keeping only the most recent
	// entries when the store is capped.
	Save(ctx context.Context, entries []Entry) error
}
