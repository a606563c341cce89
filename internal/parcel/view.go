package parcel

import (
	"fmt"

	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/notify"
	"github.com/hay-kot/parcel/internal/core/search"
)

// ViewKind names a package list page.
type ViewKind string

const (
	ViewSearch    ViewKind = "search"
	ViewInstalled ViewKind = "installed"
	ViewWishlist  ViewKind = "wishlist"
	ViewHistory   ViewKind = "history"
	ViewRepo      ViewKind = "repo"
)

// View describes one package list page.
type View struct {
	Kind ViewKind
	// Repo is the repository URL or glob for ViewRepo.
	Repo string
}

// ParseView maps a view name to a View. repo is only used by ViewRepo.
func ParseView(name, repo string) (View, error) {
	switch ViewKind(name) {
	case ViewSearch, ViewInstalled, ViewWishlist, ViewHistory:
		return View{Kind: ViewKind(name)}, nil
	case ViewRepo:
		if repo == "" {
			return View{}, fmt.Errorf("view %q requires a repo", name)
		}
		return View{Kind: ViewRepo, Repo: repo}, nil
	default:
		return View{}, fmt.Errorf("unknown view %q", name)
	}
}

// Events returns the notifications that should reload this view.
func (v View) Events() []notify.Event {
	events := []notify.Event{notify.PackagesChanged}
	switch v.Kind {
	case ViewWishlist:
		events = append(events, notify.WishlistChanged)
	case ViewHistory:
		events = append(events, notify.HistoryChanged)
	}
	return events
}

// NewCoordinator builds a search coordinator for view. onPublish may be
// nil.
func (s *Service) NewCoordinator(view View, onPublish func(search.State)) *search.Coordinator {
	cfg := search.Config{
		DebounceInterval:    s.config.Search.Debounce,
		MinProvisionalChars: s.config.Search.MinProvisionalChars,
		Catalog:             s.Catalog,
		Feed:                s.Catalog,
		Prefs:               s.Prefs,
		Terms:               s.Terms,
		WishlistIDs:         s.Wishlist.List,
		HistoryIDs:          s.Ledger.RecentPackageIDs,
		Clock:               s.clock,
		Logger:              s.log,
		OnPublish:           onPublish,
	}

	switch view.Kind {
	case ViewSearch:
		cfg.ShowSearchField = true
		cfg.LoadProvisional = true
		cfg.SearchPage = true
	case ViewInstalled:
		cfg.LoadIdentifier = catalog.IdentifierInstalled
		cfg.ShowUpdates = true
		cfg.ShowSearchField = true
	case ViewWishlist:
		cfg.LoadIdentifier = catalog.IdentifierWishlist
	case ViewHistory:
		cfg.LoadIdentifier = catalog.IdentifierHistory
	case ViewRepo:
		cfg.RepoContext = view.Repo
	}

	return search.NewCoordinator(cfg)
}
