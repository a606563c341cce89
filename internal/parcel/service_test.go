package parcel

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/annotate"
	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/config"
	"github.com/hay-kot/parcel/internal/core/history"
	"github.com/hay-kot/parcel/internal/core/notify"
	"github.com/hay-kot/parcel/internal/core/search"
	"github.com/hay-kot/parcel/pkg/clock"
)

const serviceCatalog = `
installed:
  - id: com.example.shell
    name: Shell
    version: "1.0"
packages:
  - id: com.example.shell
    name: Shell
    version: "1.1"
  - id: com.example.widget
    name: Widget
    version: "0.9"
queue:
  com.example.widget: installations
`

func newTestService(t *testing.T, catalogYAML string) (*Service, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	if catalogYAML != "" {
		require.NoError(t, os.WriteFile(cfg.CatalogPath(), []byte(catalogYAML), 0o644))
	}

	fake := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, err := New(context.Background(), &cfg, zerolog.Nop(), WithClock(fake))
	require.NoError(t, err)
	return svc, &cfg
}

func TestNew_MissingCatalogStartsEmpty(t *testing.T) {
	svc, _ := newTestService(t, "")
	assert.Empty(t, svc.InstalledSet(context.Background()))
}

func TestNew_MalformedCatalog(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	require.NoError(t, os.WriteFile(cfg.CatalogPath(), []byte("installed: [nope"), 0o644))

	_, err := New(context.Background(), &cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "open catalog")
}

func TestService_RecordUsesInstalledVersion(t *testing.T) {
	svc, cfg := newTestService(t, serviceCatalog)
	ctx := context.Background()

	var changed atomic.Int32
	svc.Bus.Subscribe(notify.PackagesChanged, func(notify.Event) { changed.Add(1) })

	require.NoError(t, svc.Ledger.AppendIDs(ctx, []string{"com.example.shell", "com.example.widget"}, history.ActionInstall))

	version, ok := svc.Ledger.LastKnownVersion("com.example.shell")
	require.True(t, ok)
	assert.Equal(t, "1.0", version)

	_, ok = svc.Ledger.LastKnownVersion("com.example.widget")
	assert.False(t, ok, "packages that are not installed have no version")

	require.NoError(t, svc.Record(ctx, []history.Item{{ID: "com.example.widget"}}, history.ActionUninstall))
	assert.Equal(t, int32(1), changed.Load())

	require.NoError(t, svc.Record(ctx, nil, history.ActionUninstall))
	assert.Equal(t, int32(1), changed.Load(), "empty transactions are ignored")

	_, err := os.Stat(cfg.HistoryFile())
	assert.NoError(t, err)
}

func TestService_RefreshCatalogReconcilesWishlist(t *testing.T) {
	svc, cfg := newTestService(t, serviceCatalog)
	ctx := context.Background()

	added, err := svc.Wishlist.Add(ctx, "com.example.widget")
	require.NoError(t, err)
	require.True(t, added)

	var changed atomic.Int32
	svc.Bus.Subscribe(notify.PackagesChanged, func(notify.Event) { changed.Add(1) })

	installed := `
installed:
  - id: com.example.widget
    name: Widget
    version: "0.9"
`
	require.NoError(t, os.WriteFile(cfg.CatalogPath(), []byte(installed), 0o644))
	require.NoError(t, svc.RefreshCatalog(ctx))

	assert.False(t, svc.Wishlist.IsInWishlist("com.example.widget"))
	assert.Equal(t, int32(1), changed.Load())
}

func TestService_Annotator(t *testing.T) {
	svc, _ := newTestService(t, serviceCatalog)
	ctx := context.Background()

	shell, ok := svc.Catalog.Lookup(ctx, "com.example.shell")
	require.True(t, ok)
	widget, ok := svc.Catalog.Lookup(ctx, "com.example.widget")
	require.True(t, ok)

	a := svc.Annotator(ctx, View{Kind: ViewSearch})
	assert.Equal(t, annotate.Badge{State: annotate.StateInstalled}, a.Badge(shell))
	assert.Equal(t, annotate.StateInstallQueued, a.Badge(widget).State)

	require.NoError(t, svc.Record(ctx, []history.Item{{ID: "com.example.widget"}}, history.ActionUninstall))
	h := svc.Annotator(ctx, View{Kind: ViewHistory})
	assert.Equal(t, annotate.StateDeleteQueued, h.Badge(widget).State)
}

func TestService_CoordinatorPerView(t *testing.T) {
	svc, _ := newTestService(t, serviceCatalog)
	ctx := context.Background()

	_, err := svc.Wishlist.Add(ctx, "com.example.widget")
	require.NoError(t, err)

	tests := []struct {
		view View
		want []string
	}{
		{View{Kind: ViewInstalled}, []string{"com.example.shell"}},
		{View{Kind: ViewWishlist}, []string{"com.example.widget"}},
		{View{Kind: ViewHistory}, []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.view.Kind), func(t *testing.T) {
			states := make(chan search.State, 4)
			c := svc.NewCoordinator(tt.view, func(s search.State) { states <- s })
			defer c.Close()

			c.Search("")

			select {
			case s := <-states:
				ids := make([]string, 0, len(s.Packages))
				for _, p := range s.Packages {
					ids = append(ids, p.ID)
				}
				assert.Equal(t, tt.want, ids)
			case <-time.After(2 * time.Second):
				t.Fatal("no state published")
			}
		})
	}
}

func TestParseView(t *testing.T) {
	v, err := ParseView("installed", "")
	require.NoError(t, err)
	assert.Equal(t, ViewInstalled, v.Kind)

	_, err = ParseView("repo", "")
	assert.Error(t, err)

	v, err = ParseView("repo", "https://repo.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://repo.example.com/", v.Repo)

	_, err = ParseView("bogus", "")
	assert.Error(t, err)

	assert.Contains(t, View{Kind: ViewHistory}.Events(), notify.HistoryChanged)
	assert.Equal(t, []notify.Event{notify.PackagesChanged}, View{Kind: ViewSearch}.Events())
}

func TestService_RecordIDs(t *testing.T) {
	svc, _ := newTestService(t, serviceCatalog)
	ctx := context.Background()

	var changed atomic.Int32
	svc.Bus.Subscribe(notify.PackagesChanged, func(notify.Event) { changed.Add(1) })

	require.NoError(t, svc.RecordIDs(ctx, []string{"com.example.shell"}, history.ActionReinstall))
	require.NoError(t, svc.RecordIDs(ctx, nil, history.ActionReinstall))

	action, ok := svc.Ledger.ActionForPackage("com.example.shell")
	require.True(t, ok)
	assert.Equal(t, history.ActionReinstall, action)

	version, ok := svc.Ledger.LastKnownVersion("com.example.shell")
	require.True(t, ok)
	assert.Equal(t, "1.0", version)
	assert.Equal(t, int32(1), changed.Load())
}

func TestService_Detail(t *testing.T) {
	svc, _ := newTestService(t, serviceCatalog)
	ctx := context.Background()

	_, err := svc.Detail(ctx, "com.example.missing")
	assert.ErrorIs(t, err, ErrPackageNotFound)

	require.NoError(t, svc.Record(ctx, []history.Item{{
		ID:              "com.example.shell",
		PreviousVersion: history.StringPtr("0.9"),
		NewVersion:      history.StringPtr("1.0"),
	}}, history.ActionUpdate))

	d, err := svc.Detail(ctx, "com.example.shell")
	require.NoError(t, err)

	assert.Equal(t, annotate.StateInstalled, d.Badge.State)
	require.NotNil(t, d.Update)
	assert.Equal(t, "1.1", d.Update.Version)
	require.Len(t, d.History, 1)
	assert.Equal(t, history.ActionUpdate, d.History[0].Action)

	md := d.Markdown()
	assert.Contains(t, md, "# Shell")
	assert.Contains(t, md, "| Update | 1.1 |")
	assert.Contains(t, md, "0.9 → 1.0")

	w, err := svc.Detail(ctx, "com.example.widget")
	require.NoError(t, err)
	assert.Equal(t, catalog.QueueInstallations, w.Queue)
	assert.Nil(t, w.Update)
}
