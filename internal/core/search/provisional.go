package search

import (
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/parcel/internal/core/catalog"
)

// DefaultMinProvisionalChars is the shortest query that shows provisional
// results.
const DefaultMinProvisionalChars = 3

// MergeProvisional filters candidates against the local result list. A
// candidate is kept when one of its name, id, description or author
// contains query (case-insensitive) and it is either unknown locally or
// strictly newer than the local copy. Queries shorter than minChars
// return nothing.
func MergeProvisional(query string, minChars int, local []catalog.Package, candidates []catalog.ProvisionalPackage) []catalog.ProvisionalPackage {
	q := strings.ToLower(query)
	if utf8.RuneCountInString(q) < minChars || q == "" {
		return nil
	}

	localVersions := make(map[string]string, len(local))
	for _, p := range local {
		if _, seen := localVersions[p.ID]; !seen {
			localVersions[p.ID] = p.Version
		}
	}

	var out []catalog.ProvisionalPackage
	for _, c := range candidates {
		if !provisionalMatches(c, q) {
			continue
		}

		if v, ok := localVersions[c.ID]; ok && !catalog.IsVersionGreater(c.Version, v) {
			continue
		}

		out = append(out, c)
	}

	return out
}

func provisionalMatches(p catalog.ProvisionalPackage, q string) bool {
	for _, field := range []string{p.Name, p.ID, p.Description, p.Author} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
