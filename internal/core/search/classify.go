package search

// SectionKind names a group of rows in the list view.
type SectionKind string

const (
	SectionUpdates        SectionKind = "updates"
	SectionIgnoredUpdates SectionKind = "ignoredUpdates"
	SectionPackages       SectionKind = "packages"
	SectionProvisional    SectionKind = "provisional"
	SectionSearchHistory  SectionKind = "searchHistory"
	SectionUnsectioned    SectionKind = "unsectioned"
)

var sectionTitles = map[SectionKind]string{
	SectionUpdates:        "Updates",
	SectionIgnoredUpdates: "Ignored Updates",
	SectionPackages:       "Packages",
	SectionProvisional:    "Not Yet Installed Sources",
	SectionSearchHistory:  "Recent Searches",
}

// Title is the header drawn above the section. Unsectioned lists have
// none.
func (k SectionKind) Title() string {
	return sectionTitles[k]
}

// Section is one group and the number of rows in it.
type Section struct {
	Kind  SectionKind `json:"kind"`
	Count int         `json:"count"`
}

// Layout is the ordered list of sections to render.
type Layout []Section

// Count returns the row count of kind, or -1 when the section is absent.
func (l Layout) Count(kind SectionKind) int {
	for _, s := range l {
		if s.Kind == kind {
			return s.Count
		}
	}
	return -1
}

// Kinds returns the section kinds in order.
func (l Layout) Kinds() []SectionKind {
	kinds := make([]SectionKind, len(l))
	for i, s := range l {
		kinds[i] = s.Kind
	}
	return kinds
}

// Input holds the flags and list sizes Classify decides on.
type Input struct {
	ShowSearchHistory bool
	ShowUpdates       bool
	ShowIgnored       bool
	ShowProvisional   bool
	LoadProvisional   bool

	SearchHistory  int
	Updates        int
	IgnoredUpdates int
	Packages       int
	Provisional    int
}

// Classify maps the current list state to a section layout. The first
// matching rule wins:
//
//  1. search history replaces everything else
//  2. update pages show updates, then ignored updates, then packages
//  3. provisional pages show packages, then provisional results
//  4. anything else is one unsectioned list
func Classify(in Input) Layout {
	switch {
	case in.ShowSearchHistory:
		return Layout{{Kind: SectionSearchHistory, Count: in.SearchHistory}}

	case in.ShowUpdates:
		layout := make(Layout, 0, 3)
		if in.Updates > 0 {
			layout = append(layout, Section{Kind: SectionUpdates, Count: in.Updates})
		}
		if in.IgnoredUpdates > 0 && in.ShowIgnored {
			layout = append(layout, Section{Kind: SectionIgnoredUpdates, Count: in.IgnoredUpdates})
		}
		return append(layout, Section{Kind: SectionPackages, Count: in.Packages})

	case in.LoadProvisional && in.ShowProvisional:
		if in.Packages == 0 {
			return Layout{{Kind: SectionProvisional, Count: in.Provisional}}
		}
		layout := Layout{{Kind: SectionPackages, Count: in.Packages}}
		if in.Provisional > 0 {
			layout = append(layout, Section{Kind: SectionProvisional, Count: in.Provisional})
		}
		return layout

	default:
		return Layout{{Kind: SectionUnsectioned, Count: in.Packages}}
	}
}
