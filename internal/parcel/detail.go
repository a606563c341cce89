package parcel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hay-kot/parcel/internal/core/annotate"
	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/history"
)

// ErrPackageNotFound is returned by Detail for ids missing from the catalog.
var ErrPackageNotFound = errors.New("package not found")

// Detail joins one package with what the ledger, wishlist and install
// queue know about it.
type Detail struct {
	Package    catalog.Package    `json:"package"`
	Badge      annotate.Badge     `json:"badge"`
	Queue      catalog.QueueState `json:"queue"`
	InWishlist bool               `json:"in_wishlist"`
	// Update is the newest available version when it is newer than the
	// installed one.
	Update *catalog.Package `json:"update,omitempty"`
	Held   bool             `json:"held,omitempty"`
	// History holds this package's ledger entries, newest first.
	History []history.Entry `json:"history,omitempty"`
}

// Detail returns the detail view of id.
func (s *Service) Detail(ctx context.Context, id string) (Detail, error) {
	pkg, ok := s.Catalog.Lookup(ctx, id)
	if !ok {
		return Detail{}, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
	}

	d := Detail{
		Package:    pkg,
		Queue:      s.Catalog.Classify(pkg),
		InWishlist: s.Wishlist.IsInWishlist(id),
	}
	d.Badge = annotate.PackageBadge(d.Queue, pkg.Installed)

	updates, err := s.Catalog.AvailableUpdates(ctx)
	if err != nil {
		return Detail{}, fmt.Errorf("load updates: %w", err)
	}
	for _, u := range updates {
		if u.Package.ID == id {
			next := u.Package
			d.Update = &next
			d.Held = u.Held
			break
		}
	}

	for _, e := range s.Ledger.Timeline() {
		if e.ID == id {
			d.History = append(d.History, e)
		}
	}

	return d, nil
}

// Markdown renders the detail as a markdown document.
func (d Detail) Markdown() string {
	var b strings.Builder
	p := d.Package

	fmt.Fprintf(&b, "# %s\n\n", p.DisplayName())
	fmt.Fprintf(&b, "`%s` %s", p.ID, p.Version)
	if !d.Badge.Hidden {
		fmt.Fprintf(&b, " · **%s**", d.Badge.State)
	}
	b.WriteString("\n\n")

	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n\n")
	}

	b.WriteString("| | |\n|---|---|\n")
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", k, v)
		}
	}
	row("Author", p.Author)
	row("Repository", p.Repo)
	row("Section", p.Section)
	if p.InstallDate != nil {
		row("Installed", p.InstallDate.Local().Format("2006-01-02 15:04"))
	}
	if p.InstalledSize != nil {
		row("Size", humanize.IBytes(uint64(max(*p.InstalledSize, 0))))
	}
	if d.Update != nil {
		update := d.Update.Version
		if d.Held {
			update += " (held)"
		}
		row("Update", update)
	}
	if d.Queue != catalog.QueueNone {
		row("Queued", string(d.Queue))
	}
	if d.InWishlist {
		row("Wishlist", "yes")
	}

	if len(d.History) > 0 {
		b.WriteString("\n## History\n\n")
		for _, e := range d.History {
			version := e.VersionString()
			if prev := e.PreviousVersionString(); prev != "" {
				version = prev + " → " + version
			}
			action := string(e.Action)
			if action == "" {
				action = "recorded"
			}
			fmt.Fprintf(&b, "- %s **%s** %s\n", e.Time().Local().Format("2006-01-02 15:04:05"), action, version)
		}
	}

	return b.String()
}
