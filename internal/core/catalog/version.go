package catalog

import (
	"strings"

	debversion "github.com/knqyf263/go-deb-version"
)

// CompareVersions compares two dpkg version strings, returning -1, 0 or 1.
// Strings that do not parse as dpkg versions compare lexically.
func CompareVersions(a, b string) int {
	va, errA := debversion.NewVersion(a)
	vb, errB := debversion.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}

	switch c := va.Compare(vb); {
	case c < 0:
		return -1
	case c > 0:
		return 1
	default:
		return 0
	}
}

// IsVersionGreater reports whether a is strictly newer than b.
func IsVersionGreater(a, b string) bool {
	return CompareVersions(a, b) > 0
}
