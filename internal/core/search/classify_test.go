package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Layout
	}{
		{
			name: "search history replaces everything",
			in:   Input{ShowSearchHistory: true, ShowUpdates: true, SearchHistory: 2, Updates: 3, Packages: 5},
			want: Layout{{SectionSearchHistory, 2}},
		},
		{
			name: "updates then packages",
			in:   Input{ShowUpdates: true, ShowIgnored: true, Updates: 3, Packages: 5},
			want: Layout{{SectionUpdates, 3}, {SectionPackages, 5}},
		},
		{
			name: "ignored updates take the first slot when no updates",
			in:   Input{ShowUpdates: true, ShowIgnored: true, IgnoredUpdates: 2, Packages: 5},
			want: Layout{{SectionIgnoredUpdates, 2}, {SectionPackages, 5}},
		},
		{
			name: "ignored updates come second",
			in:   Input{ShowUpdates: true, ShowIgnored: true, Updates: 1, IgnoredUpdates: 2, Packages: 5},
			want: Layout{{SectionUpdates, 1}, {SectionIgnoredUpdates, 2}, {SectionPackages, 5}},
		},
		{
			name: "ignored updates hidden by preference",
			in:   Input{ShowUpdates: true, Updates: 1, IgnoredUpdates: 2, Packages: 5},
			want: Layout{{SectionUpdates, 1}, {SectionPackages, 5}},
		},
		{
			name: "packages slot kept when empty",
			in:   Input{ShowUpdates: true},
			want: Layout{{SectionPackages, 0}},
		},
		{
			name: "provisional alone without local results",
			in:   Input{LoadProvisional: true, ShowProvisional: true, Provisional: 4},
			want: Layout{{SectionProvisional, 4}},
		},
		{
			name: "provisional slot kept when both lists are empty",
			in:   Input{LoadProvisional: true, ShowProvisional: true},
			want: Layout{{SectionProvisional, 0}},
		},
		{
			name: "packages then provisional",
			in:   Input{LoadProvisional: true, ShowProvisional: true, Packages: 2, Provisional: 4},
			want: Layout{{SectionPackages, 2}, {SectionProvisional, 4}},
		},
		{
			name: "empty provisional omitted after packages",
			in:   Input{LoadProvisional: true, ShowProvisional: true, Packages: 2},
			want: Layout{{SectionPackages, 2}},
		},
		{
			name: "provisional disabled falls through",
			in:   Input{LoadProvisional: true, Packages: 2, Provisional: 4},
			want: Layout{{SectionUnsectioned, 2}},
		},
		{
			name: "plain list",
			in:   Input{Packages: 7},
			want: Layout{{SectionUnsectioned, 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			assert.Equal(t, tt.want, got)
			assertUniqueKinds(t, got)
		})
	}
}

func assertUniqueKinds(t *testing.T, l Layout) {
	t.Helper()
	seen := map[SectionKind]bool{}
	for _, s := range l {
		assert.False(t, seen[s.Kind], "duplicate section %s", s.Kind)
		seen[s.Kind] = true
	}
}

func TestLayout_Count(t *testing.T) {
	l := Layout{{SectionUpdates, 3}, {SectionPackages, 0}}

	assert.Equal(t, 3, l.Count(SectionUpdates))
	assert.Equal(t, 0, l.Count(SectionPackages))
	assert.Equal(t, -1, l.Count(SectionProvisional))
	assert.Equal(t, []SectionKind{SectionUpdates, SectionPackages}, l.Kinds())
}

func TestSectionKind_Title(t *testing.T) {
	assert.Equal(t, "Updates", SectionUpdates.Title())
	assert.Equal(t, "Not Yet Installed Sources", SectionProvisional.Title())
	assert.Empty(t, SectionUnsectioned.Title())
}
