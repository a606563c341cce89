package tui

import (
	"fmt"

	"github.com/hay-kot/parcel/internal/core/annotate"
	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/search"
)

type rowKind int

const (
	rowHeader rowKind = iota
	rowPackage
	rowProvisional
	rowTerm
)

// row is one line of the package list.
type row struct {
	kind        rowKind
	title       string
	pkg         catalog.Package
	provisional catalog.ProvisionalPackage
	term        string
	badge       annotate.Badge
	wishlisted  bool
}

func (r row) selectable() bool {
	return r.kind != rowHeader
}

// buildRows flattens a published state into list rows in layout order.
// Sections without a title get no header row.
func buildRows(state search.State, a annotate.Annotator, wishlisted func(string) bool) []row {
	var rows []row

	pkgRows := func(pkgs []catalog.Package) {
		for _, p := range pkgs {
			rows = append(rows, row{
				kind:       rowPackage,
				pkg:        p,
				badge:      a.Badge(p),
				wishlisted: wishlisted != nil && wishlisted(p.ID),
			})
		}
	}

	for _, section := range state.Layout {
		if title := section.Kind.Title(); title != "" {
			rows = append(rows, row{kind: rowHeader, title: fmt.Sprintf("%s (%d)", title, section.Count)})
		}

		switch section.Kind {
		case search.SectionUpdates:
			pkgRows(state.Updates)
		case search.SectionIgnoredUpdates:
			pkgRows(state.IgnoredUpdates)
		case search.SectionProvisional:
			for _, p := range state.Provisional {
				rows = append(rows, row{kind: rowProvisional, provisional: p})
			}
		case search.SectionSearchHistory:
			for _, term := range state.SearchHistory {
				rows = append(rows, row{kind: rowTerm, term: term})
			}
		default:
			pkgRows(state.Packages)
		}
	}

	return rows
}

// nextSelectable returns the index of the first selectable row at or
// after from moving in direction dir, or -1.
func nextSelectable(rows []row, from, dir int) int {
	for i := from; i >= 0 && i < len(rows); i += dir {
		if rows[i].selectable() {
			return i
		}
	}
	return -1
}

// clampCursor keeps cursor on a selectable row after the rows changed,
// preferring the row with the same key.
func clampCursor(rows []row, cursor int, prevKey string) int {
	if prevKey != "" {
		for i, r := range rows {
			if r.selectable() && r.key() == prevKey {
				return i
			}
		}
	}

	cursor = min(max(cursor, 0), len(rows)-1)
	if i := nextSelectable(rows, cursor, 1); i >= 0 {
		return i
	}
	return nextSelectable(rows, cursor, -1)
}

func (r row) key() string {
	switch r.kind {
	case rowPackage:
		return "pkg:" + r.pkg.ID
	case rowProvisional:
		return "prov:" + r.provisional.ID
	case rowTerm:
		return "term:" + r.term
	default:
		return ""
	}
}
