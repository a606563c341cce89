// Package catalog declares the package index collaborators consumed by
// the search engine: the catalog itself, the provisional feed, and the
// install queue oracle.
package catalog

import (
	"context"
	"time"
)

// Load identifiers understood by Catalog.Search.
const (
	IdentifierDefault          = ""
	IdentifierAll              = "--all"
	IdentifierInstalled        = "--installed"
	IdentifierContextInstalled = "--contextInstalled"
	IdentifierWishlist         = "--wishlist"
	IdentifierHistory          = "--history"
)

// Package is a catalog record. Lists hold packages by value; identity is
// the ID.
type Package struct {
	ID            string     `yaml:"id" json:"id"`
	Name          string     `yaml:"name" json:"name,omitempty"`
	Version       string     `yaml:"version" json:"version"`
	Description   string     `yaml:"description" json:"description,omitempty"`
	Author        string     `yaml:"author" json:"author,omitempty"`
	Repo          string     `yaml:"repo" json:"repo,omitempty"`
	Section       string     `yaml:"section" json:"section,omitempty"`
	Installed     bool       `yaml:"installed" json:"installed,omitempty"`
	InstallDate   *time.Time `yaml:"install_date" json:"install_date,omitempty"`
	InstalledSize *int64     `yaml:"installed_size" json:"installed_size,omitempty"`
	// Held marks an installed package whose updates are ignored.
	Held bool `yaml:"held" json:"held,omitempty"`
}

// DisplayName returns Name, falling back to ID.
func (p Package) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// ProvisionalPackage is a candidate from a remote catalog that is not yet
// tied to a configured repository.
type ProvisionalPackage struct {
	ID          string `yaml:"package" json:"package"`
	Name        string `yaml:"name" json:"name,omitempty"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description,omitempty"`
	Author      string `yaml:"author" json:"author,omitempty"`
	Repo        string `yaml:"repo" json:"repo,omitempty"`
}

// DisplayName returns Name, falling back to ID.
func (p ProvisionalPackage) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Update pairs the newest available package with whether the installed
// copy is held.
type Update struct {
	Package Package
	Held    bool
}

// QueueState classifies a package's position in the install queue.
type QueueState string

const (
	QueueNone            QueueState = "none"
	QueueInstallations   QueueState = "installations"
	QueueUpgrades        QueueState = "upgrades"
	QueueUninstallations QueueState = "uninstallations"
)

// Query selects a package list.
type Query struct {
	// Identifier is one of the Identifier constants or a repo glob.
	Identifier string
	// Search filters by case-insensitive match; empty means unfiltered.
	Search string
	// RepoContext restricts results to one repository URL.
	RepoContext string
	// IDs restricts results to these ids, in this order. Used for the
	// wishlist and history lists. A nil slice means no restriction; an
	// empty one selects nothing.
	IDs []string
	// Prepend lists packages placed ahead of the results when they match
	// Search. Results already in Prepend are not repeated.
	Prepend []Package
	// Sort orders results by relevance to Search (or by name).
	Sort bool
}

// Catalog is the package index.
type Catalog interface {
	// Lookup returns the newest package with the given id.
	Lookup(ctx context.Context, id string) (Package, bool)
	// Search returns the packages selected by q.
	Search(ctx context.Context, q Query) ([]Package, error)
	// Installed returns every installed package.
	Installed(ctx context.Context) ([]Package, error)
	// RepoInstalled returns installed packages that came from repo.
	RepoInstalled(ctx context.Context, repo string) ([]Package, error)
	// AvailableUpdates returns packages newer than their installed copy.
	AvailableUpdates(ctx context.Context) ([]Update, error)
	// SortPackages orders packages the way Search does for search.
	SortPackages(pkgs []Package, search string) []Package
}

// ProvisionalFeed is the remote catalog of provisional packages.
type ProvisionalFeed interface {
	// Fetch looks up query remotely and calls done once with whether the
	// current results changed. done may run on any goroutine.
	Fetch(ctx context.Context, query string, done func(changed bool))
	// Current returns the latest fetched results.
	Current() []ProvisionalPackage
}

// QueueOracle reports the install queue state of a package.
type QueueOracle interface {
	Classify(pkg Package) QueueState
}

// InstalledSet returns the ids of pkgs.
func InstalledSet(pkgs []Package) map[string]bool {
	set := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		set[p.ID] = true
	}
	return set
}
