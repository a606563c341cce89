package filecatalog

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"

	"github.com/hay-kot/parcel/internal/core/catalog"
)

// Catalog serves packages from a catalog file. It implements
// catalog.Catalog, catalog.ProvisionalFeed and catalog.QueueOracle.
type Catalog struct {
	path string
	log  zerolog.Logger

	mu          sync.RWMutex
	installed   []catalog.Package
	available   []catalog.Package
	candidates  []catalog.ProvisionalPackage
	queue       map[string]catalog.QueueState
	provisional []catalog.ProvisionalPackage
}

var (
	_ catalog.Catalog         = (*Catalog)(nil)
	_ catalog.ProvisionalFeed = (*Catalog)(nil)
	_ catalog.QueueOracle     = (*Catalog)(nil)
)

// New returns an empty catalog for path. Call Reload to read it.
func New(path string, log zerolog.Logger) *Catalog {
	return &Catalog{
		path: path,
		log:  log.With().Str("component", "filecatalog").Logger(),
	}
}

// Open loads the catalog at path.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Catalog, error) {
	c := New(path, log)
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the catalog file path.
func (c *Catalog) Path() string {
	return c.path
}

// Reload re-reads the catalog file.
func (c *Catalog) Reload(ctx context.Context) error {
	f, err := loadFile(ctx, c.path)
	if err != nil {
		return err
	}

	for i := range f.Installed {
		f.Installed[i].Installed = true
	}

	c.mu.Lock()
	c.installed = f.Installed
	c.available = f.Packages
	c.candidates = f.Provisional
	c.queue = f.Queue
	c.mu.Unlock()

	c.log.Debug().
		Int("installed", len(f.Installed)).
		Int("packages", len(f.Packages)).
		Int("provisional", len(f.Provisional)).
		Msg("catalog loaded")

	return nil
}

// universe returns one record per id: the installed copy, or the newest
// available one. Caller must hold c.mu.
func (c *Catalog) universe() []catalog.Package {
	byID := make(map[string]int)
	var out []catalog.Package

	for _, p := range c.installed {
		if _, ok := byID[p.ID]; ok {
			continue
		}
		byID[p.ID] = len(out)
		out = append(out, p)
	}

	for _, p := range c.available {
		i, ok := byID[p.ID]
		if !ok {
			byID[p.ID] = len(out)
			out = append(out, p)
			continue
		}
		if !out[i].Installed && catalog.IsVersionGreater(p.Version, out[i].Version) {
			out[i] = p
		}
	}

	return out
}

// Lookup returns the installed copy of id, or the newest available one.
func (c *Catalog) Lookup(_ context.Context, id string) (catalog.Package, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.universe() {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Package{}, false
}

// Search returns the packages selected by q.
func (c *Catalog) Search(_ context.Context, q catalog.Query) ([]catalog.Package, error) {
	c.mu.RLock()
	var pkgs []catalog.Package
	switch q.Identifier {
	case catalog.IdentifierDefault, catalog.IdentifierAll, catalog.IdentifierWishlist, catalog.IdentifierHistory:
		pkgs = c.universe()
	case catalog.IdentifierInstalled, catalog.IdentifierContextInstalled:
		pkgs = slices.Clone(c.installed)
	default:
		pkgs = filterRepo(c.available, q.Identifier)
	}
	c.mu.RUnlock()

	if q.RepoContext != "" {
		pkgs = filterRepo(pkgs, q.RepoContext)
	}

	if q.IDs != nil {
		pkgs = pickIDs(pkgs, q.IDs)
	}

	needle := strings.ToLower(q.Search)
	pkgs = slices.DeleteFunc(pkgs, func(p catalog.Package) bool { return !matches(p, needle) })

	if q.Sort && q.IDs == nil {
		pkgs = c.SortPackages(pkgs, q.Search)
	}

	if len(q.Prepend) == 0 {
		return pkgs, nil
	}

	out := make([]catalog.Package, 0, len(q.Prepend)+len(pkgs))
	seen := make(map[string]bool)
	for _, p := range q.Prepend {
		if matches(p, needle) && !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	for _, p := range pkgs {
		if !seen[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// Installed returns the installed packages in file order.
func (c *Catalog) Installed(_ context.Context) ([]catalog.Package, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.installed), nil
}

// RepoInstalled returns installed packages whose repo matches repo. repo
// may be a glob.
func (c *Catalog) RepoInstalled(_ context.Context, repo string) ([]catalog.Package, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterRepo(c.installed, repo), nil
}

// AvailableUpdates pairs each installed package with the newest available
// package that is strictly newer. Results are ordered by name.
func (c *Catalog) AvailableUpdates(_ context.Context) ([]catalog.Update, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var updates []catalog.Update
	for _, inst := range c.installed {
		var best *catalog.Package
		for i := range c.available {
			p := &c.available[i]
			if p.ID != inst.ID || !catalog.IsVersionGreater(p.Version, inst.Version) {
				continue
			}
			if best == nil || catalog.IsVersionGreater(p.Version, best.Version) {
				best = p
			}
		}
		if best != nil {
			updates = append(updates, catalog.Update{Package: *best, Held: inst.Held})
		}
	}

	slices.SortStableFunc(updates, func(a, b catalog.Update) int {
		return compareNames(a.Package, b.Package)
	})
	return updates, nil
}

// SortPackages orders pkgs by fuzzy relevance of their display name to
// search. Packages that do not fuzzy match, or every package when search
// is empty, follow in name order.
func (c *Catalog) SortPackages(pkgs []catalog.Package, search string) []catalog.Package {
	rest := slices.Clone(pkgs)
	var ranked []catalog.Package

	if search != "" {
		hits := fuzzy.FindFrom(search, byName(rest))
		picked := make(map[int]bool, len(hits))
		for _, h := range hits {
			ranked = append(ranked, rest[h.Index])
			picked[h.Index] = true
		}

		unmatched := rest[:0:0]
		for i, p := range rest {
			if !picked[i] {
				unmatched = append(unmatched, p)
			}
		}
		rest = unmatched
	}

	slices.SortStableFunc(rest, compareNames)
	return append(ranked, rest...)
}

// Classify reports the queue state recorded for pkg.
func (c *Catalog) Classify(pkg catalog.Package) catalog.QueueState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if s, ok := c.queue[pkg.ID]; ok {
		return s
	}
	return catalog.QueueNone
}

// Fetch looks query up among the provisional entries. done reports
// whether the current results changed.
func (c *Catalog) Fetch(ctx context.Context, query string, done func(changed bool)) {
	if ctx.Err() != nil {
		done(false)
		return
	}

	needle := strings.ToLower(query)

	c.mu.Lock()
	var found []catalog.ProvisionalPackage
	for _, p := range c.candidates {
		for _, field := range []string{p.Name, p.ID, p.Description, p.Author} {
			if strings.Contains(strings.ToLower(field), needle) {
				found = append(found, p)
				break
			}
		}
	}
	changed := !slices.Equal(found, c.provisional)
	c.provisional = found
	c.mu.Unlock()

	c.log.Debug().Str("query", query).Int("results", len(found)).Bool("changed", changed).Msg("provisional fetch")
	done(changed)
}

// Current returns the results of the last Fetch.
func (c *Catalog) Current() []catalog.ProvisionalPackage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.provisional)
}

type byName []catalog.Package

func (b byName) String(i int) string { return b[i].DisplayName() }
func (b byName) Len() int            { return len(b) }

func compareNames(a, b catalog.Package) int {
	if c := strings.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName())); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func matches(p catalog.Package, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{p.Name, p.ID, p.Description, p.Author} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// filterRepo keeps packages whose repo equals pattern or matches it as a
// glob.
func filterRepo(pkgs []catalog.Package, pattern string) []catalog.Package {
	var out []catalog.Package
	for _, p := range pkgs {
		if p.Repo == pattern {
			out = append(out, p)
			continue
		}
		if ok, err := doublestar.Match(pattern, p.Repo); err == nil && ok {
			out = append(out, p)
		}
	}
	return out
}

func pickIDs(pkgs []catalog.Package, ids []string) []catalog.Package {
	byID := make(map[string]catalog.Package, len(pkgs))
	for _, p := range pkgs {
		byID[p.ID] = p
	}

	out := make([]catalog.Package, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
