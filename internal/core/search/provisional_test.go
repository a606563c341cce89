package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/parcel/internal/core/catalog"
)

func TestMergeProvisional(t *testing.T) {
	candidate := catalog.ProvisionalPackage{ID: "abcdef", Name: "Abcdef", Version: "2.0"}

	tests := []struct {
		name  string
		query string
		local []catalog.Package
		want  int
	}{
		{name: "newer than installed", query: "abc", local: []catalog.Package{{ID: "abcdef", Version: "1.0"}}, want: 1},
		{name: "same version as installed", query: "abc", local: []catalog.Package{{ID: "abcdef", Version: "2.0"}}, want: 0},
		{name: "older than installed", query: "abc", local: []catalog.Package{{ID: "abcdef", Version: "3.0"}}, want: 0},
		{name: "unknown locally", query: "abc", want: 1},
		{name: "query too short", query: "ab", want: 0},
		{name: "empty query", query: "", want: 0},
		{name: "no match", query: "xyz", want: 0},
		{name: "case insensitive", query: "ABCD", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeProvisional(tt.query, DefaultMinProvisionalChars, tt.local, []catalog.ProvisionalPackage{candidate})
			assert.Len(t, got, tt.want)
		})
	}
}

func TestMergeProvisional_SearchableFields(t *testing.T) {
	candidates := []catalog.ProvisionalPackage{
		{ID: "com.one", Name: "One", Version: "1"},
		{ID: "com.two", Name: "Two", Description: "a tweak for widgets", Version: "1"},
		{ID: "com.three", Name: "Three", Author: "Widget Labs", Version: "1"},
		{ID: "com.widget", Name: "Four", Version: "1"},
	}

	got := MergeProvisional("widget", DefaultMinProvisionalChars, nil, candidates)

	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"com.two", "com.three", "com.widget"}, ids)
}
