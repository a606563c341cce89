package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/catalog"
)

type mockWishlist struct {
	ids       []string
	removeErr error
}

func (m *mockWishlist) List() []string { return slices.Clone(m.ids) }

func (m *mockWishlist) Remove(_ context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.ids = slices.DeleteFunc(m.ids, func(s string) bool { return s == id })
	return nil
}

type mockLookup map[string]catalog.Package

func (m mockLookup) Lookup(_ context.Context, id string) (catalog.Package, bool) {
	p, ok := m[id]
	return p, ok
}

var knownPackages = mockLookup{
	"com.example.shell":  {ID: "com.example.shell"},
	"com.example.widget": {ID: "com.example.widget"},
}

func TestOrphanCheck_NoOrphans(t *testing.T) {
	wl := &mockWishlist{ids: []string{"com.example.shell", "com.example.widget"}}

	result := NewOrphanCheck(wl, knownPackages, false).Run(context.Background())

	assert.Equal(t, "Wishlist", result.Name)
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "No orphans", result.Items[0].Label)
}

func TestOrphanCheck_WithOrphans(t *testing.T) {
	wl := &mockWishlist{ids: []string{"com.example.shell", "com.example.gone"}}

	result := NewOrphanCheck(wl, knownPackages, false).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusWarn, result.Items[0].Status)
	assert.Equal(t, "com.example.gone", result.Items[0].Label)
	assert.True(t, result.Items[0].Fixable)
	assert.Len(t, wl.ids, 2, "report only")
}

func TestOrphanCheck_FixRemovesOrphans(t *testing.T) {
	wl := &mockWishlist{ids: []string{"com.example.gone", "com.example.shell", "com.example.lost"}}

	result := NewOrphanCheck(wl, knownPackages, true).Run(context.Background())

	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		assert.Equal(t, StatusPass, item.Status)
		assert.Contains(t, item.Detail, "removed")
	}
	assert.Equal(t, []string{"com.example.shell"}, wl.ids)
}

func TestOrphanCheck_FixFailure(t *testing.T) {
	wl := &mockWishlist{ids: []string{"com.example.gone"}, removeErr: errors.New("disk full")}

	result := NewOrphanCheck(wl, knownPackages, true).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "disk full")
}

func TestRun_Report(t *testing.T) {
	report := Run(context.Background(), []Check{
		NewOrphanCheck(&mockWishlist{ids: []string{"a", "b"}}, knownPackages, false),
		NewOrphanCheck(&mockWishlist{}, knownPackages, false),
	})

	assert.True(t, report.Healthy, "warnings keep the setup healthy")
	assert.Equal(t, Summary{Passed: 1, Warned: 2, Failed: 0, Fixable: 2}, report.Summary)
	require.Len(t, report.Checks, 2)
	assert.Contains(t, report.Checks[0].Items[0].Hint, "parcel doctor --fix")

	data, err := json.Marshal(report.Checks[0].Items[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"warn"`)
}

func TestRun_FailureIsUnhealthy(t *testing.T) {
	wl := &mockWishlist{ids: []string{"com.example.gone"}, removeErr: errors.New("disk full")}

	report := Run(context.Background(), []Check{NewOrphanCheck(wl, knownPackages, true)})

	assert.False(t, report.Healthy)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 0, report.Summary.Fixable)
	assert.NotEmpty(t, report.Checks[0].Items[0].Hint)
}
