package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hay-kot/parcel/internal/core/prefs"
)

// watchInterval is how often Watch re-reads the file.
const watchInterval = 250 * time.Millisecond

// KVFile is the root JSON structure stored on disk for preference values.
type KVFile struct {
	Entries map[string]prefs.Entry `json:"entries"`
}

// KVStore implements prefs.Store using a JSON file for persistence.
// A sibling lock file serializes access across parcel processes, so a
// preference changed from the CLI is seen by a running browser.
type KVStore struct {
	path string
	mu   sync.RWMutex
	now  func() time.Time
}

// NewKVStore creates a new JSON file KV store at the given path.
func NewKVStore(path string) *KVStore {
	return &KVStore{path: path, now: time.Now}
}

// withFileLock acquires a flock of lockType on path+".lock", runs fn,
// then releases the lock.
func (s *KVStore) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// read loads the file under a shared lock.
func (s *KVStore) read() (KVFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var file KVFile
	err := s.withFileLock(syscall.LOCK_SH, func() error {
		var err error
		file, err = s.load()
		return err
	})
	return file, err
}

// update loads the file, applies fn and saves it, all under an exclusive lock.
// An error from fn leaves the file untouched.
func (s *KVStore) update(fn func(file *KVFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(syscall.LOCK_EX, func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		if err := fn(&file); err != nil {
			return err
		}

		return writeJSON(s.path, file)
	})
}

// Get returns an entry by key. Returns ErrKeyNotFound if not found.
func (s *KVStore) Get(ctx context.Context, key string) (prefs.Entry, error) {
	file, err := s.read()
	if err != nil {
		return prefs.Entry{}, err
	}

	entry, ok := file.Entries[key]
	if !ok {
		return prefs.Entry{}, prefs.ErrKeyNotFound
	}

	return entry, nil
}

// Set creates or updates an entry. CreatedAt is kept across updates.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.update(func(file *KVFile) error {
		now := s.now()
		entry, exists := file.Entries[key]
		if !exists {
			entry = prefs.Entry{Key: key, CreatedAt: now}
		}
		entry.Value = value
		entry.UpdatedAt = now

		file.Entries[key] = entry
		return nil
	})
}

// Delete removes an entry by key. Returns ErrKeyNotFound if not found.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	return s.update(func(file *KVFile) error {
		if _, ok := file.Entries[key]; !ok {
			return prefs.ErrKeyNotFound
		}
		delete(file.Entries, key)
		return nil
	})
}

// List returns all entries matching the prefix, sorted by key.
func (s *KVStore) List(ctx context.Context, prefix string) ([]prefs.Entry, error) {
	file, err := s.read()
	if err != nil {
		return nil, err
	}

	var entries []prefs.Entry
	for _, entry := range file.Entries {
		if prefix == "" || strings.HasPrefix(entry.Key, prefix) {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Watch polls until key has UpdatedAt > after, the timeout elapses, or
// ctx is done.
func (s *KVStore) Watch(ctx context.Context, key string, after time.Time, timeout time.Duration) (prefs.Entry, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return prefs.Entry{}, ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return prefs.Entry{}, context.DeadlineExceeded
			}

			entry, err := s.Get(ctx, key)
			if errors.Is(err, prefs.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return prefs.Entry{}, err
			}

			if entry.UpdatedAt.After(after) {
				return entry, nil
			}
		}
	}
}

// load reads the KV file from disk. Caller must hold the file lock.
func (s *KVStore) load() (KVFile, error) {
	var file KVFile
	if _, err := readJSON(s.path, &file); err != nil {
		return KVFile{}, err
	}

	if file.Entries == nil {
		file.Entries = make(map[string]prefs.Entry)
	}

	return file, nil
}
