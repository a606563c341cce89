package doctor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parcel/internal/catalog/filecatalog"
	"github.com/hay-kot/parcel/internal/core/config"
	"github.com/hay-kot/parcel/internal/store/jsonfile"
)

// DataCheck verifies that the catalog and every state file parse.
type DataCheck struct {
	config *config.Config
}

// NewDataCheck creates a data file check.
func NewDataCheck(cfg *config.Config) *DataCheck {
	return &DataCheck{config: cfg}
}

func (c *DataCheck) Name() string {
	return "Data Files"
}

func (c *DataCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config loaded",
			Status: StatusFail,
			Detail: "configuration not loaded",
			Hint:   "data files are located through the config, fix it first",
		})
		return result
	}

	result.Items = append(result.Items, c.checkCatalog(ctx))

	result.Items = append(result.Items, checkFile("History", c.config.HistoryFile(), func() (int, error) {
		entries, err := jsonfile.NewHistoryStore(c.config.HistoryFile(), c.config.History.MaxEntries).Load(ctx)
		return len(entries), err
	}))
	result.Items = append(result.Items, checkFile("Wishlist", c.config.WishlistFile(), func() (int, error) {
		ids, err := jsonfile.NewListStore(c.config.WishlistFile()).Load(ctx)
		return len(ids), err
	}))
	result.Items = append(result.Items, checkFile("Recent searches", c.config.TermsFile(), func() (int, error) {
		terms, err := jsonfile.NewListStore(c.config.TermsFile()).Load(ctx)
		return len(terms), err
	}))
	result.Items = append(result.Items, checkFile("Preferences", c.config.PrefsFile(), func() (int, error) {
		entries, err := jsonfile.NewKVStore(c.config.PrefsFile()).List(ctx, "")
		return len(entries), err
	}))

	return result
}

func (c *DataCheck) checkCatalog(ctx context.Context) CheckItem {
	path := c.config.CatalogPath()

	cat, err := filecatalog.Open(ctx, path, zerolog.Nop())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CheckItem{
			Label:  "Catalog",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%s not found", path),
			Hint:   "create the file or point catalog_file at an existing one",
		}
	case err != nil:
		return CheckItem{
			Label:  "Catalog",
			Status: StatusFail,
			Detail: err.Error(),
			Hint:   "fix the YAML in the catalog or one of its include fragments",
		}
	}

	installed, _ := cat.Installed(ctx)
	updates, _ := cat.AvailableUpdates(ctx)
	return CheckItem{
		Label:  "Catalog",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d installed, %d update(s)", len(installed), len(updates)),
	}
}

// checkFile runs load against a state file. A missing file passes since
// stores create their files on first write.
func checkFile(label, path string, load func() (int, error)) CheckItem {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return CheckItem{Label: label, Status: StatusPass, Detail: "not created yet"}
	}

	n, err := load()
	if err != nil {
		return CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: err.Error(),
			Hint:   fmt.Sprintf("parcel reads %s as empty; delete it to start over", path),
		}
	}

	return CheckItem{Label: label, Status: StatusPass, Detail: fmt.Sprintf("%d record(s)", n)}
}
