package doctor

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func itemByLabel(t *testing.T, r Result, label string) CheckItem {
	t.Helper()
	for _, item := range r.Items {
		if item.Label == label {
			return item
		}
	}
	t.Fatalf("no item %q in %s", label, r.Name)
	return CheckItem{}
}

func TestDataCheck_FreshDataDir(t *testing.T) {
	result := NewDataCheck(testConfig(t)).Run(context.Background())

	assert.Equal(t, StatusWarn, itemByLabel(t, result, "Catalog").Status)
	for _, label := range []string{"History", "Wishlist", "Recent searches", "Preferences"} {
		item := itemByLabel(t, result, label)
		assert.Equal(t, StatusPass, item.Status, label)
		assert.Equal(t, "not created yet", item.Detail, label)
	}
}

func TestDataCheck_CorruptFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.CatalogPath(), []byte("installed: [nope"), 0o644))
	require.NoError(t, os.WriteFile(cfg.HistoryFile(), []byte("{garbage"), 0o644))
	require.NoError(t, os.WriteFile(cfg.WishlistFile(), []byte(`{"ids":["a","b"]}`), 0o644))

	result := NewDataCheck(cfg).Run(context.Background())

	assert.Equal(t, StatusFail, itemByLabel(t, result, "Catalog").Status)
	history := itemByLabel(t, result, "History")
	assert.Equal(t, StatusFail, history.Status)
	assert.Contains(t, history.Hint, cfg.HistoryFile())

	wl := itemByLabel(t, result, "Wishlist")
	assert.Equal(t, StatusPass, wl.Status)
	assert.Equal(t, "2 record(s)", wl.Detail)
}

func TestDataCheck_ValidCatalog(t *testing.T) {
	cfg := testConfig(t)
	catalogYAML := `
installed:
  - id: com.example.shell
    version: "1.0"
packages:
  - id: com.example.shell
    version: "1.1"
`
	require.NoError(t, os.WriteFile(cfg.CatalogPath(), []byte(catalogYAML), 0o644))

	item := itemByLabel(t, NewDataCheck(cfg).Run(context.Background()), "Catalog")
	assert.Equal(t, StatusPass, item.Status)
	assert.Equal(t, "1 installed, 1 update(s)", item.Detail)
}

func TestConfigCheck(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.MaxEntries = 0

	result := NewConfigCheck(cfg).Run(context.Background())

	maxEntries := itemByLabel(t, result, "history.max_entries")
	assert.Equal(t, StatusFail, maxEntries.Status)
	assert.Equal(t, "history.max_entries must be at least 1", maxEntries.Hint)
	assert.Equal(t, StatusWarn, itemByLabel(t, result, "catalog_file").Status)

	missing := NewConfigCheck(nil).Run(context.Background())
	require.Len(t, missing.Items, 1)
	assert.Equal(t, StatusFail, missing.Items[0].Status)
}

func TestConfigHint(t *testing.T) {
	assert.Contains(t, configHint("keybindings.o"), "action")
	assert.Equal(t, "edit search.max_terms in the config file", configHint("search.max_terms"))
	assert.Contains(t, configHint(""), "parcel config")
}
