package search

import (
	"slices"

	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/prefs"
)

// SortInstalled orders the installed list by mode. SortName defers to the
// catalog's relevance order for query.
func SortInstalled(pkgs []catalog.Package, mode prefs.SortMode, cat catalog.Catalog, query string) []catalog.Package {
	out := slices.Clone(pkgs)

	switch mode {
	case prefs.SortInstallDate:
		// Newest first; undated packages keep their order at the end.
		slices.SortStableFunc(out, func(a, b catalog.Package) int {
			switch {
			case a.InstallDate == nil && b.InstallDate == nil:
				return 0
			case a.InstallDate == nil:
				return 1
			case b.InstallDate == nil:
				return -1
			default:
				return b.InstallDate.Compare(*a.InstallDate)
			}
		})
	case prefs.SortSize:
		slices.SortStableFunc(out, func(a, b catalog.Package) int {
			sa, sb := installedSize(a), installedSize(b)
			switch {
			case sa > sb:
				return -1
			case sa < sb:
				return 1
			default:
				return 0
			}
		})
	default:
		if cat != nil {
			out = cat.SortPackages(out, query)
		}
	}

	return out
}

func installedSize(p catalog.Package) int64 {
	if p.InstalledSize == nil {
		return 0
	}
	return *p.InstalledSize
}
