package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parcel/internal/printer"
)

type WishlistCmd struct {
	flags *Flags
}

// NewWishlistCmd creates a new wishlist command.
func NewWishlistCmd(flags *Flags) *WishlistCmd {
	return &WishlistCmd{flags: flags}
}

// Register adds the wishlist command to the application.
func (cmd *WishlistCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "wishlist",
		Aliases: []string{"wl"},
		Usage:   "Manage packages saved for later",
		Description: `Wishlist commands manage an ordered list of package ids.

Packages are dropped from the wishlist once they show up as installed.`,
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List wishlist packages in the order they were added",
				Action:  cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Add packages to the wishlist",
				ArgsUsage: "<id>...",
				Action:    cmd.runAdd,
			},
			{
				Name:      "rm",
				Aliases:   []string{"remove"},
				Usage:     "Remove packages from the wishlist",
				ArgsUsage: "<id>...",
				Action:    cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *WishlistCmd) runList(ctx context.Context, c *cli.Command) error {
	ids := cmd.flags.Service.Wishlist.List()
	if len(ids) == 0 {
		printer.Ctx(ctx).Infof("Wishlist is empty")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tVERSION")

	for _, id := range ids {
		name, version := "-", "-"
		if pkg, ok := cmd.flags.Service.Catalog.Lookup(ctx, id); ok {
			name, version = pkg.DisplayName(), pkg.Version
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", id, name, version)
	}

	return w.Flush()
}

func (cmd *WishlistCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("at least one package id is required")
	}

	installed := cmd.flags.Service.InstalledSet(ctx)
	for _, id := range ids {
		if installed[id] {
			p.Warnf("%s is already installed", id)
			continue
		}
		if _, ok := cmd.flags.Service.Catalog.Lookup(ctx, id); !ok {
			p.Warnf("%s is not in the catalog", id)
		}

		added, err := cmd.flags.Service.Wishlist.Add(ctx, id)
		if err != nil {
			return fmt.Errorf("add %s: %w", id, err)
		}
		if !added {
			p.Infof("%s is already on the wishlist", id)
			continue
		}
		p.Successf("Added %s", id)
	}

	return nil
}

func (cmd *WishlistCmd) runRemove(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("at least one package id is required")
	}

	for _, id := range ids {
		if !cmd.flags.Service.Wishlist.IsInWishlist(id) {
			p.Infof("%s is not on the wishlist", id)
			continue
		}
		if err := cmd.flags.Service.Wishlist.Remove(ctx, id); err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
		p.Successf("Removed %s", id)
	}

	return nil
}
