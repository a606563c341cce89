package doctor

import (
	"context"
	"fmt"

	"github.com/hay-kot/parcel/internal/core/catalog"
)

// WishlistStore is the part of the wishlist the orphan check needs.
type WishlistStore interface {
	List() []string
	Remove(ctx context.Context, id string) error
}

// PackageLookup resolves package ids.
type PackageLookup interface {
	Lookup(ctx context.Context, id string) (catalog.Package, bool)
}

// OrphanCheck detects wishlist ids that no longer resolve in the catalog.
type OrphanCheck struct {
	wishlist WishlistStore
	packages PackageLookup
	fix      bool
}

// NewOrphanCheck creates a new orphan wishlist check.
// If fix is true, orphaned ids are removed from the wishlist.
func NewOrphanCheck(wishlist WishlistStore, packages PackageLookup, fix bool) *OrphanCheck {
	return &OrphanCheck{
		wishlist: wishlist,
		packages: packages,
		fix:      fix,
	}
}

func (c *OrphanCheck) Name() string {
	return "Wishlist"
}

func (c *OrphanCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	var orphans []string
	for _, id := range c.wishlist.List() {
		if _, ok := c.packages.Lookup(ctx, id); !ok {
			orphans = append(orphans, id)
		}
	}

	if len(orphans) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "No orphans",
			Status: StatusPass,
			Detail: "every wishlist package is in the catalog",
		})
		return result
	}

	for _, id := range orphans {
		if !c.fix {
			result.Items = append(result.Items, CheckItem{
				Label:   id,
				Status:  StatusWarn,
				Detail:  "not in the catalog",
				Hint:    "run 'parcel doctor --fix' or 'parcel wishlist remove " + id + "'",
				Fixable: true,
			})
			continue
		}

		if err := c.wishlist.Remove(ctx, id); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  id,
				Status: StatusFail,
				Detail: fmt.Sprintf("failed to remove: %v", err),
				Hint:   "check that the data directory is writable",
			})
			continue
		}
		result.Items = append(result.Items, CheckItem{
			Label:  id,
			Status: StatusPass,
			Detail: "removed from wishlist",
		})
	}

	return result
}
