package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/notify"
	"github.com/hay-kot/parcel/internal/core/storage"
	"github.com/hay-kot/parcel/pkg/clock"
)

// mockStore implements Store in memory.
type mockStore struct {
	entries []Entry
	saves   int
	loadErr error
	saveErr error
}

func (m *mockStore) Load(_ context.Context) ([]Entry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *mockStore) Save(_ context.Context, entries []Entry) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = entries
	return nil
}

// countingNotifier records published events.
type countingNotifier struct {
	events []notify.Event
}

func (n *countingNotifier) Publish(ev notify.Event) {
	n.events = append(n.events, ev)
}

func newTestLedger(t *testing.T, store Store, opts ...Option) (*Ledger, *clock.FakeClock) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	opts = append([]Option{WithClock(fake)}, opts...)
	return NewLedger(context.Background(), store, zerolog.Nop(), opts...), fake
}

func TestLedger_AppendEmptyIsNoop(t *testing.T) {
	store := &mockStore{}
	n := &countingNotifier{}
	ledger, _ := newTestLedger(t, store, WithNotifier(n))

	require.NoError(t, ledger.Append(context.Background(), nil, ActionInstall))
	require.NoError(t, ledger.Append(context.Background(), []Item{}, ActionInstall))

	assert.Equal(t, 0, ledger.Len())
	assert.Equal(t, 0, store.saves)
	assert.Empty(t, n.events)
}

func TestLedger_AppendStampsSameTime(t *testing.T) {
	store := &mockStore{}
	n := &countingNotifier{}
	ledger, fake := newTestLedger(t, store, WithNotifier(n))
	ctx := context.Background()

	err := ledger.Append(ctx, []Item{
		{ID: "a", NewVersion: StringPtr("1.0")},
		{ID: "b", PreviousVersion: StringPtr("0.9"), NewVersion: StringPtr("1.1")},
	}, ActionUpdate)
	require.NoError(t, err)

	require.Len(t, store.entries, 2)
	assert.Equal(t, store.entries[0].Timestamp, store.entries[1].Timestamp)
	assert.Equal(t, fake.Now().Unix(), store.entries[0].Time().Unix())
	assert.Equal(t, "0.9", store.entries[1].PreviousVersionString())
	assert.Equal(t, []notify.Event{notify.HistoryChanged}, n.events)
}

func TestLedger_ActionForPackageUsesLatest(t *testing.T) {
	ledger, fake := newTestLedger(t, &mockStore{})
	ctx := context.Background()

	_, ok := ledger.ActionForPackage("pkg")
	assert.False(t, ok, "no entries means no action")

	require.NoError(t, ledger.Append(ctx, []Item{{ID: "pkg", NewVersion: StringPtr("1.0")}}, ActionInstall))
	fake.Advance(time.Minute)
	require.NoError(t, ledger.Append(ctx, []Item{{ID: "pkg", NewVersion: StringPtr("2.0")}}, ActionUpdate))
	fake.Advance(time.Minute)
	require.NoError(t, ledger.Append(ctx, []Item{{ID: "other"}}, ActionUninstall))

	action, ok := ledger.ActionForPackage("pkg")
	require.True(t, ok)
	assert.Equal(t, ActionUpdate, action)

	version, ok := ledger.LastKnownVersion("pkg")
	require.True(t, ok)
	assert.Equal(t, "2.0", version)

	_, ok = ledger.LastKnownVersion("other")
	assert.False(t, ok, "uninstall entries carry no version")
}

func TestLedger_LatestIsByTimestampNotInsertion(t *testing.T) {
	newer := StringPtr("3.0")
	older := StringPtr("1.0")
	store := &mockStore{entries: []Entry{
		{ID: "pkg", Version: newer, Timestamp: 2000, Action: ActionReinstall},
		{ID: "pkg", Version: older, Timestamp: 1000, Action: ActionInstall},
	}}
	ledger, _ := newTestLedger(t, store)

	action, ok := ledger.ActionForPackage("pkg")
	require.True(t, ok)
	assert.Equal(t, ActionReinstall, action)

	version, _ := ledger.LastKnownVersion("pkg")
	assert.Equal(t, "3.0", version)
}

func TestLedger_TimelineAndRecentIDs(t *testing.T) {
	ledger, fake := newTestLedger(t, &mockStore{})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "a", "c"} {
		require.NoError(t, ledger.Append(ctx, []Item{{ID: id}}, ActionInstall))
		fake.Advance(time.Second)
	}

	timeline := ledger.Timeline()
	require.Len(t, timeline, 4)
	for i := 1; i < len(timeline); i++ {
		assert.GreaterOrEqual(t, timeline[i-1].Timestamp, timeline[i].Timestamp)
	}
	assert.Equal(t, "c", timeline[0].ID)

	assert.Equal(t, []string{"c", "a", "b"}, ledger.RecentPackageIDs())
}

func TestLedger_TimelineGroups(t *testing.T) {
	ledger, fake := newTestLedger(t, &mockStore{})
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, []Item{{ID: "a"}, {ID: "b"}}, ActionInstall))
	fake.Advance(10 * time.Second)
	require.NoError(t, ledger.Append(ctx, []Item{{ID: "c"}}, ActionUninstall))

	groups := ledger.TimelineGroups()
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Entries, 1)
	assert.Equal(t, "c", groups[0].Entries[0].ID)
	assert.Len(t, groups[1].Entries, 2)
	assert.Greater(t, groups[0].Second, groups[1].Second)
}

func TestLedger_Clear(t *testing.T) {
	store := &mockStore{}
	n := &countingNotifier{}
	ledger, _ := newTestLedger(t, store, WithNotifier(n))
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, []Item{{ID: "a"}}, ActionInstall))
	require.NoError(t, ledger.Clear(ctx))

	assert.Equal(t, 0, ledger.Len())
	assert.Empty(t, store.entries)
	assert.Len(t, n.events, 2)
}

func TestLedger_WriteFailureKeepsMemory(t *testing.T) {
	store := &mockStore{saveErr: errors.New("disk full")}
	ledger, _ := newTestLedger(t, store)

	err := ledger.Append(context.Background(), []Item{{ID: "a"}}, ActionInstall)
	require.ErrorIs(t, err, storage.ErrWrite)

	assert.Equal(t, 1, ledger.Len())
	action, ok := ledger.ActionForPackage("a")
	require.True(t, ok)
	assert.Equal(t, ActionInstall, action)
}

func TestLedger_UnreadableStoreStartsEmpty(t *testing.T) {
	store := &mockStore{loadErr: fmt.Errorf("%w: bad json", storage.ErrRead)}
	ledger, _ := newTestLedger(t, store)

	assert.Equal(t, 0, ledger.Len())
	assert.Empty(t, ledger.Timeline())
}

func TestLedger_AppendIDsResolvesVersions(t *testing.T) {
	store := &mockStore{}
	installed := map[string]string{"a": "1.2"}
	ledger, _ := newTestLedger(t, store, WithVersionLookup(func(id string) (string, bool) {
		v, ok := installed[id]
		return v, ok
	}))

	require.NoError(t, ledger.AppendIDs(context.Background(), []string{"a", "b"}, ActionInstall))

	require.Len(t, store.entries, 2)
	assert.Equal(t, "1.2", store.entries[0].VersionString())
	assert.Nil(t, store.entries[1].Version)
	assert.Nil(t, store.entries[0].PreviousVersion)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
		ok   bool
	}{
		{"install", ActionInstall, true},
		{"reinstall", ActionReinstall, true},
		{"uninstall", ActionUninstall, true},
		{"update", ActionUpdate, true},
		{"upgrade", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAction(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
