package search

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/prefs"
	"github.com/hay-kot/parcel/pkg/clock"
)

// DefaultDebounce is the quiet period before a provisional lookup.
const DefaultDebounce = 500 * time.Millisecond

// ErrStaleResult marks a computation that finished after a newer search
// was issued. Its result is dropped.
var ErrStaleResult = errors.New("stale search result discarded")

// Preferences is the subset of prefs.Prefs the coordinator reads.
type Preferences interface {
	SortMode(ctx context.Context) prefs.SortMode
	ShowIgnoredUpdates(ctx context.Context) bool
	ShowProvisional(ctx context.Context) bool
	ShowSearchHistory(ctx context.Context) bool
}

// IDSource returns an ordered list of package ids, such as the wishlist.
type IDSource func() []string

// Config configures a Coordinator.
type Config struct {
	// LoadIdentifier selects the package universe. See the
	// catalog.Identifier constants; any other value is passed to the
	// catalog as a scope.
	LoadIdentifier string
	// RepoContext restricts results to one repository.
	RepoContext string

	ShowSearchField bool
	ShowUpdates     bool
	LoadProvisional bool
	// SearchPage enables the recent searches list while the query is empty.
	SearchPage bool

	DebounceInterval    time.Duration
	MinProvisionalChars int

	Catalog catalog.Catalog
	Feed    catalog.ProvisionalFeed
	Prefs   Preferences
	Terms   *Terms
	// WishlistIDs and HistoryIDs feed the --wishlist and --history lists.
	WishlistIDs IDSource
	HistoryIDs  IDSource

	Clock  clock.Clock
	Logger zerolog.Logger
	// OnPublish receives every published state. Calls are serialized.
	OnPublish func(State)
}

// State is a snapshot of the visible list.
type State struct {
	Query          string                       `json:"query"`
	Packages       []catalog.Package            `json:"packages"`
	Updates        []catalog.Package            `json:"updates,omitempty"`
	IgnoredUpdates []catalog.Package            `json:"ignored_updates,omitempty"`
	Provisional    []catalog.ProvisionalPackage `json:"provisional,omitempty"`
	SearchHistory  []string                     `json:"search_history,omitempty"`
	Layout         Layout                       `json:"layout"`
}

// Coordinator turns a stream of queries into the package list that should
// be visible. Computations run on worker goroutines and are never
// canceled; only the most recently issued one may publish.
type Coordinator struct {
	cfg   Config
	log   zerolog.Logger
	clock clock.Clock
	cache *QueryCache

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	inFlight atomic.Int64
	issued   atomic.Uint64

	pubMu sync.Mutex

	mu              sync.Mutex
	closed          bool
	query           string
	packages        []catalog.Package
	updates         []catalog.Package
	ignored         []catalog.Package
	provisional     []catalog.ProvisionalPackage
	installed       []catalog.Package
	debounce        *clock.Timer
	showProvisional bool
	showIgnored     bool
	showHistory     bool
}

// NewCoordinator creates a Coordinator. Call Close to stop its timer and
// wait for running computations.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = DefaultDebounce
	}
	if cfg.MinProvisionalChars <= 0 {
		cfg.MinProvisionalChars = DefaultMinProvisionalChars
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		cfg:             cfg,
		log:             cfg.Logger.With().Str("component", "search").Logger(),
		clock:           cfg.Clock,
		cache:           NewQueryCache(),
		ctx:             ctx,
		cancel:          cancel,
		showProvisional: true,
		showIgnored:     true,
		showHistory:     true,
	}
	c.RefreshPrefs(ctx)
	return c
}

// RefreshPrefs re-reads the boolean preferences.
func (c *Coordinator) RefreshPrefs(ctx context.Context) {
	if c.cfg.Prefs == nil {
		return
	}

	showProvisional := c.cfg.Prefs.ShowProvisional(ctx)
	showIgnored := c.cfg.Prefs.ShowIgnoredUpdates(ctx)
	showHistory := c.cfg.Prefs.ShowSearchHistory(ctx)

	c.mu.Lock()
	c.showProvisional = showProvisional
	c.showIgnored = showIgnored
	c.showHistory = showHistory
	c.mu.Unlock()
}

// Search sets the current query and recomputes the visible list.
func (c *Coordinator) Search(query string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.query = query
	c.debounce.Stop()
	c.debounce = nil

	if query == "" {
		if c.cfg.ShowSearchField {
			c.packages = nil
			c.provisional = nil
		}
	} else if c.cfg.Feed != nil {
		c.debounce = c.clock.AfterFunc(c.cfg.DebounceInterval, func() {
			c.FetchProvisional(query)
		})
	}

	if query == "" && c.cfg.LoadIdentifier == catalog.IdentifierDefault && c.cfg.RepoContext == "" {
		c.mu.Unlock()
		c.publish()
		return
	}

	seq := c.issued.Add(1)
	c.inFlight.Add(1)
	c.wg.Add(1)
	c.mu.Unlock()

	go c.compute(seq, query)
}

// SubmitSearch handles an explicit search submission: the term is added
// to the recent searches and the provisional feed is queried at once.
func (c *Coordinator) SubmitSearch(ctx context.Context, query string) {
	c.mu.Lock()
	show := c.showProvisional
	history := c.showHistory
	c.mu.Unlock()

	if query == "" || !show || !c.cfg.LoadProvisional || c.cfg.Feed == nil {
		return
	}

	if history && c.cfg.Terms != nil {
		if err := c.cfg.Terms.Add(ctx, query); err != nil {
			c.log.Warn().Err(err).Msg("failed to record search term")
		}
	}

	c.FetchProvisional(query)
}

// FetchProvisional queries the provisional feed for query now, skipping
// the debounce, and publishes if the feed results changed. It does
// nothing for an empty query or when provisional results are not shown.
// Close waits for a running Fetch call to return; a feed that calls done
// later finds the coordinator closed and nothing is published.
func (c *Coordinator) FetchProvisional(query string) {
	c.mu.Lock()
	if c.closed || query == "" || !c.showProvisional || !c.cfg.LoadProvisional || c.cfg.Feed == nil {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	c.cfg.Feed.Fetch(c.ctx, query, func(changed bool) {
		if !changed {
			return
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.mergeProvisionalLocked()
		c.mu.Unlock()

		c.publish()
	})
}

// Cancel clears the local and provisional results.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.debounce.Stop()
	c.debounce = nil
	c.packages = nil
	c.provisional = nil
	c.mu.Unlock()

	c.publish()
}

// InvalidateCache drops every memoized result and the installed snapshot.
func (c *Coordinator) InvalidateCache() {
	c.cache.Clear()

	c.mu.Lock()
	c.installed = nil
	c.mu.Unlock()
}

// Reload invalidates the cache, re-reads preferences and recomputes the
// current query. Update pages reload their updates first.
func (c *Coordinator) Reload() {
	c.InvalidateCache()
	c.RefreshPrefs(c.ctx)

	if !c.cfg.ShowUpdates {
		c.Search(c.Query())
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if err := c.ReloadUpdates(c.ctx); err != nil {
			c.log.Warn().Err(err).Msg("failed to reload updates")
		}
	}()
}

// ReloadUpdates loads available updates and the installed snapshot, then
// recomputes the current query. Held updates are only kept while the
// show-ignored preference is on.
func (c *Coordinator) ReloadUpdates(ctx context.Context) error {
	var (
		updates   []catalog.Update
		installed []catalog.Package
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		updates, err = c.cfg.Catalog.AvailableUpdates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		installed, err = c.cfg.Catalog.Installed(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	showIgnored := c.showIgnored
	c.mu.Unlock()

	var avail, ignored []catalog.Package
	for _, u := range updates {
		if u.Held {
			if showIgnored {
				ignored = append(ignored, u.Package)
			}
			continue
		}
		avail = append(avail, u.Package)
	}

	c.cache.Clear()

	c.mu.Lock()
	c.updates = avail
	c.ignored = ignored
	c.installed = installed
	c.mu.Unlock()

	c.log.Debug().Int("updates", len(avail)).Int("ignored", len(ignored)).Msg("updates reloaded")

	c.Search(c.Query())
	return nil
}

// Installed returns the installed packages, loading them once per cache
// generation.
func (c *Coordinator) Installed(ctx context.Context) ([]catalog.Package, error) {
	c.mu.Lock()
	if c.installed != nil {
		pkgs := slices.Clone(c.installed)
		c.mu.Unlock()
		return pkgs, nil
	}
	c.mu.Unlock()

	pkgs, err := c.cfg.Catalog.Installed(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.installed = pkgs
	c.mu.Unlock()

	return slices.Clone(pkgs), nil
}

// Query returns the current query.
func (c *Coordinator) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// InFlight returns the number of running computations.
func (c *Coordinator) InFlight() int64 {
	return c.inFlight.Load()
}

// State returns a snapshot of the visible list.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Wait blocks until the running computations and fetches have published
// or been dropped. It must not race with Search; one-shot callers use it
// between issuing a query and reading State. A debounce timer that has not
// fired yet is not waited for.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close stops the debounce timer, cancels the context handed to the
// catalog and waits for running computations.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.debounce.Stop()
	c.debounce = nil
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Coordinator) stateLocked() State {
	var terms []string
	if c.cfg.Terms != nil {
		terms = c.cfg.Terms.List()
	}

	showHistory := c.cfg.SearchPage && c.showHistory && len(terms) > 0 && c.query == ""

	return State{
		Query:          c.query,
		Packages:       slices.Clone(c.packages),
		Updates:        slices.Clone(c.updates),
		IgnoredUpdates: slices.Clone(c.ignored),
		Provisional:    slices.Clone(c.provisional),
		SearchHistory:  terms,
		Layout: Classify(Input{
			ShowSearchHistory: showHistory,
			ShowUpdates:       c.cfg.ShowUpdates,
			ShowIgnored:       c.showIgnored,
			ShowProvisional:   c.showProvisional,
			LoadProvisional:   c.cfg.LoadProvisional,
			SearchHistory:     len(terms),
			Updates:           len(c.updates),
			IgnoredUpdates:    len(c.ignored),
			Packages:          len(c.packages),
			Provisional:       len(c.provisional),
		}),
	}
}

// publish hands a fresh snapshot to OnPublish. Taking the snapshot under
// pubMu keeps the last delivered state the newest one.
func (c *Coordinator) publish() {
	if c.cfg.OnPublish == nil {
		return
	}

	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.cfg.OnPublish(c.State())
}

func (c *Coordinator) compute(seq uint64, query string) {
	defer c.wg.Done()

	pkgs, err := c.resolve(c.ctx, query)
	c.done()

	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("search failed")
		return
	}

	c.mu.Lock()
	if seq != c.issued.Load() || c.closed {
		c.mu.Unlock()
		c.log.Debug().Err(ErrStaleResult).Str("query", query).Msg("dropping result")
		return
	}
	c.packages = pkgs
	c.mergeProvisionalLocked()
	c.mu.Unlock()

	c.publish()
}

// done decrements the in-flight counter without letting it go negative.
func (c *Coordinator) done() {
	for {
		n := c.inFlight.Load()
		if n <= 0 || c.inFlight.CompareAndSwap(n, n-1) {
			return
		}
	}
}

func (c *Coordinator) resolve(ctx context.Context, query string) ([]catalog.Package, error) {
	id := c.cfg.LoadIdentifier

	gen := c.cache.Generation()
	pkgs, ok := c.cache.Get(query)
	if !ok {
		q := catalog.Query{
			Identifier:  id,
			Search:      query,
			RepoContext: c.cfg.RepoContext,
			Sort:        id != catalog.IdentifierInstalled,
		}

		switch id {
		case catalog.IdentifierContextInstalled:
			prepend, err := c.cfg.Catalog.RepoInstalled(ctx, c.cfg.RepoContext)
			if err != nil {
				return nil, err
			}
			q.RepoContext = ""
			q.Prepend = prepend
		case catalog.IdentifierWishlist:
			q.IDs = ids(c.cfg.WishlistIDs)
		case catalog.IdentifierHistory:
			q.IDs = ids(c.cfg.HistoryIDs)
		}

		var err error
		pkgs, err = c.cfg.Catalog.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		if !c.cache.Put(gen, query, pkgs) {
			c.log.Debug().Str("query", query).Msg("cache cleared during search, result not cached")
		}
	}

	if id == catalog.IdentifierInstalled {
		mode := prefs.SortName
		if c.cfg.Prefs != nil {
			mode = c.cfg.Prefs.SortMode(ctx)
		}
		pkgs = SortInstalled(pkgs, mode, c.cfg.Catalog, query)
	}

	return pkgs, nil
}

func ids(src IDSource) []string {
	if src == nil {
		return []string{}
	}
	out := src()
	if out == nil {
		return []string{}
	}
	return out
}

// mergeProvisionalLocked recomputes the provisional list for the current
// query. Caller must hold c.mu.
func (c *Coordinator) mergeProvisionalLocked() {
	if !c.cfg.LoadProvisional || !c.showProvisional || c.cfg.Feed == nil {
		c.provisional = nil
		return
	}

	c.provisional = MergeProvisional(c.query, c.cfg.MinProvisionalChars, c.packages, c.cfg.Feed.Current())
}
