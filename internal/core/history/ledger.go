package history

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parcel/internal/core/notify"
	"github.com/hay-kot/parcel/internal/core/storage"
	"github.com/hay-kot/parcel/pkg/clock"
)

// VersionLookup returns the installed version of a package, if any.
type VersionLookup func(id string) (string, bool)

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source used to stamp entries.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithNotifier sets where history-changed events are published.
func WithNotifier(n notify.Notifier) Option {
	return func(l *Ledger) { l.notifier = n }
}

// WithVersionLookup sets how AppendIDs resolves versions.
func WithVersionLookup(fn VersionLookup) Option {
	return func(l *Ledger) { l.versions = fn }
}

// Ledger is the in-memory history of package actions backed by a Store.
// Every mutation is written through to the store before it returns.
type Ledger struct {
	mu       sync.RWMutex
	entries  []Entry
	store    Store
	clock    clock.Clock
	notifier notify.Notifier
	versions VersionLookup
	log      zerolog.Logger
}

// NewLedger creates a Ledger and loads the persisted entries. A store
// that cannot be read yields an empty ledger.
func NewLedger(ctx context.Context, store Store, log zerolog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		clock:    clock.Real(),
		notifier: notify.Discard,
		log:      log,
	}
	for _, opt := range opts {
		opt(l)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("history unreadable, starting empty")
		entries = nil
	}
	l.entries = entries

	return l
}

// Append records items under a single timestamp. Empty input is a no-op.
// When the write fails the entries remain in memory and the returned
// error wraps storage.ErrWrite.
func (l *Ledger) Append(ctx context.Context, items []Item, action Action) error {
	if len(items) == 0 {
		return nil
	}

	l.mu.Lock()
	now := timestamp(l.clock.Now())
	for _, item := range items {
		l.entries = append(l.entries, Entry{
			ID:              item.ID,
			Version:         item.NewVersion,
			Timestamp:       now,
			Action:          action,
			PreviousVersion: item.PreviousVersion,
		})
	}
	err := l.persist(ctx)
	l.mu.Unlock()

	l.notifier.Publish(notify.HistoryChanged)
	return err
}

// AppendIDs records ids with their currently installed versions.
func (l *Ledger) AppendIDs(ctx context.Context, ids []string, action Action) error {
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		item := Item{ID: id}
		if l.versions != nil {
			if v, ok := l.versions(id); ok {
				item.NewVersion = StringPtr(v)
			}
		}
		items = append(items, item)
	}
	return l.Append(ctx, items, action)
}

// Clear removes every entry.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	l.entries = nil
	err := l.persist(ctx)
	l.mu.Unlock()

	l.notifier.Publish(notify.HistoryChanged)
	return err
}

// persist writes the current entries. Caller must hold l.mu.
func (l *Ledger) persist(ctx context.Context) error {
	snapshot := make([]Entry, len(l.entries))
	copy(snapshot, l.entries)

	if err := l.store.Save(ctx, snapshot); err != nil {
		l.log.Warn().Err(err).Int("entries", len(snapshot)).Msg("failed to save history")
		return fmt.Errorf("%w: %w", storage.ErrWrite, err)
	}
	return nil
}

// latest returns the entry with the greatest timestamp for id. Ties keep
// the earliest appended entry. Caller must hold l.mu.
func (l *Ledger) latest(id string) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range l.entries {
		if e.ID != id {
			continue
		}
		if !found || e.Timestamp > best.Timestamp {
			best = e
			found = true
		}
	}
	return best, found
}

// ActionForPackage returns the most recent action recorded for id.
func (l *Ledger) ActionForPackage(id string) (Action, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.latest(id)
	if !ok || e.Action == "" {
		return "", false
	}
	return e.Action, true
}

// LastKnownVersion returns the version of the most recent entry for id.
func (l *Ledger) LastKnownVersion(id string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.latest(id)
	if !ok || e.Version == nil {
		return "", false
	}
	return *e.Version, true
}

// Timeline returns all entries, newest first. Entries sharing a
// timestamp keep their insertion order.
func (l *Ledger) Timeline() []Entry {
	l.mu.RLock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// RecentPackageIDs returns package ids newest first, each id once.
func (l *Ledger) RecentPackageIDs() []string {
	timeline := l.Timeline()

	seen := make(map[string]struct{}, len(timeline))
	ids := make([]string, 0, len(timeline))
	for _, e := range timeline {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		ids = append(ids, e.ID)
	}
	return ids
}

// TimelineGroups returns the timeline bucketed by whole second, newest
// bucket first.
func (l *Ledger) TimelineGroups() []TimelineGroup {
	var groups []TimelineGroup
	for _, e := range l.Timeline() {
		sec := int64(e.Timestamp)
		if n := len(groups); n > 0 && groups[n-1].Second == sec {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, TimelineGroup{Second: sec, Entries: []Entry{e}})
	}
	return groups
}

// Len returns the number of in-memory entries. It can exceed the store's
// cap because pruning only happens when the store writes.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
