// Package parcel wires the core services together for the CLI and TUI.
package parcel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parcel/internal/catalog/filecatalog"
	"github.com/hay-kot/parcel/internal/core/annotate"
	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/config"
	"github.com/hay-kot/parcel/internal/core/history"
	"github.com/hay-kot/parcel/internal/core/notify"
	"github.com/hay-kot/parcel/internal/core/prefs"
	"github.com/hay-kot/parcel/internal/core/search"
	"github.com/hay-kot/parcel/internal/core/wishlist"
	"github.com/hay-kot/parcel/internal/store/jsonfile"
	"github.com/hay-kot/parcel/pkg/clock"
)

// Service owns the long-lived services of one parcel process.
type Service struct {
	config *config.Config
	log    zerolog.Logger
	clock  clock.Clock

	Bus      *notify.Bus
	Catalog  *filecatalog.Catalog
	Ledger   *history.Ledger
	Wishlist *wishlist.Wishlist
	Terms    *search.Terms
	Prefs    *prefs.Prefs
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used by the ledger and coordinators.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// New loads every store under cfg.DataDir. A missing catalog file yields
// an empty catalog; a malformed one is an error.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		config: cfg,
		log:    log,
		clock:  clock.Real(),
		Bus:    notify.NewBus(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cat, err := filecatalog.Open(ctx, cfg.CatalogPath(), log)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", cfg.CatalogPath()).Msg("catalog file not found, starting empty")
		cat = filecatalog.New(cfg.CatalogPath(), log)
	case err != nil:
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	s.Catalog = cat

	s.Prefs = prefs.New(jsonfile.NewKVStore(cfg.PrefsFile()), log.With().Str("component", "prefs").Logger())

	s.Ledger = history.NewLedger(ctx,
		jsonfile.NewHistoryStore(cfg.HistoryFile(), cfg.History.MaxEntries),
		log.With().Str("component", "history").Logger(),
		history.WithClock(s.clock),
		history.WithNotifier(s.Bus),
		history.WithVersionLookup(s.installedVersion),
	)

	s.Wishlist = wishlist.New(ctx,
		jsonfile.NewListStore(cfg.WishlistFile()),
		s.InstalledSet(ctx),
		s.Bus,
		log.With().Str("component", "wishlist").Logger(),
	)

	s.Terms = search.NewTerms(ctx,
		jsonfile.NewListStore(cfg.TermsFile()),
		cfg.Search.MaxTerms,
		log.With().Str("component", "terms").Logger(),
	)

	return s, nil
}

func (s *Service) installedVersion(id string) (string, bool) {
	p, ok := s.Catalog.Lookup(context.Background(), id)
	if !ok || !p.Installed {
		return "", false
	}
	return p.Version, true
}

// InstalledSet returns the ids of installed packages.
func (s *Service) InstalledSet(ctx context.Context) map[string]bool {
	pkgs, err := s.Catalog.Installed(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to list installed packages")
		return map[string]bool{}
	}
	return catalog.InstalledSet(pkgs)
}

// RefreshCatalog re-reads the catalog file, reconciles the wishlist and
// announces the change.
func (s *Service) RefreshCatalog(ctx context.Context) error {
	if err := s.Catalog.Reload(ctx); err != nil {
		return fmt.Errorf("reload catalog: %w", err)
	}

	s.Wishlist.ReloadData(ctx, s.InstalledSet(ctx))
	s.Bus.Publish(notify.PackagesChanged)
	return nil
}

// Annotator returns the row decorator for view.
func (s *Service) Annotator(ctx context.Context, view View) annotate.Annotator {
	a := annotate.Annotator{
		Queue:     s.Catalog,
		Installed: s.InstalledSet(ctx),
	}
	if view.Kind == ViewHistory {
		a.Actions = s.Ledger
	}
	return a
}

// Record appends a completed transaction to the history ledger and
// announces the install state change. A ledger write failure is returned
// after the change is announced, since the in-memory ledger already holds
// the entries.
func (s *Service) Record(ctx context.Context, items []history.Item, action history.Action) error {
	if len(items) == 0 {
		return nil
	}

	err := s.Ledger.Append(ctx, items, action)
	s.Bus.Publish(notify.PackagesChanged)
	if err != nil {
		return fmt.Errorf("record %s: %w", action, err)
	}
	return nil
}

// RecordIDs is Record for callers that only know package ids. Versions
// are taken from the installed catalog.
func (s *Service) RecordIDs(ctx context.Context, ids []string, action history.Action) error {
	if len(ids) == 0 {
		return nil
	}

	err := s.Ledger.AppendIDs(ctx, ids, action)
	s.Bus.Publish(notify.PackagesChanged)
	if err != nil {
		return fmt.Errorf("record %s: %w", action, err)
	}
	return nil
}
