package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parcel/internal/core/annotate"
	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/core/search"
	"github.com/hay-kot/parcel/internal/parcel"
	"github.com/hay-kot/parcel/internal/printer"
)

type SearchCmd struct {
	flags *Flags

	// Command-specific flags
	view   string
	repo   string
	json   bool
	record bool
}

// NewSearchCmd creates a new search command
func NewSearchCmd(flags *Flags) *SearchCmd {
	return &SearchCmd{flags: flags}
}

// Register adds the search command to the application
func (cmd *SearchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "search",
		Usage:     "Search a package list",
		UsageText: "parcel search [options] [query...]",
		Description: `Runs a query against one package list and prints its sections.

Views:
  search     all packages, provisional matches and recent searches
  installed  installed packages with available and held updates
  wishlist   packages on the wishlist
  history    packages with recorded actions, newest first
  repo       packages from one repository (requires --repo)

On the search view a non-empty query is remembered as a recent search
unless --record=false is given.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "view",
				Usage:       "package list to search (search, installed, wishlist, history, repo)",
				Value:       string(parcel.ViewSearch),
				Destination: &cmd.view,
			},
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "repository URL or glob for the repo view",
				Destination: &cmd.repo,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.json,
			},
			&cli.BoolFlag{
				Name:        "record",
				Usage:       "remember the query as a recent search",
				Value:       true,
				Destination: &cmd.record,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SearchCmd) run(ctx context.Context, c *cli.Command) error {
	view, err := parcel.ParseView(cmd.view, cmd.repo)
	if err != nil {
		return err
	}

	query := strings.Join(c.Args().Slice(), " ")

	state, err := loadView(ctx, cmd.flags.Service, view, query, cmd.record)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	if len(state.Layout) == 0 {
		printer.Ctx(ctx).Infof("No packages")
		return nil
	}

	return printState(out, state, cmd.flags.Service.Annotator(ctx, view))
}

// loadView runs query on a one-shot coordinator for view and returns the
// settled state.
func loadView(ctx context.Context, svc *parcel.Service, view parcel.View, query string, record bool) (search.State, error) {
	co := svc.NewCoordinator(view, nil)
	defer co.Close()

	if view.Kind == parcel.ViewInstalled {
		if err := co.ReloadUpdates(ctx); err != nil {
			return search.State{}, fmt.Errorf("load updates: %w", err)
		}
	}

	// The debounced fetch never fires before Close, so query the feed now.
	if view.Kind == parcel.ViewSearch && query != "" {
		if record {
			co.SubmitSearch(ctx, query)
		} else {
			co.FetchProvisional(query)
		}
	}

	co.Search(query)
	co.Wait()

	return co.State(), nil
}

func printState(out io.Writer, state search.State, a annotate.Annotator) error {
	p := printer.New(out)

	for i, section := range state.Layout {
		if i > 0 {
			p.Printf("")
		}
		if title := section.Kind.Title(); title != "" {
			p.Section(fmt.Sprintf("%s (%d)", title, section.Count))
		}

		var err error
		switch section.Kind {
		case search.SectionUpdates:
			err = printPackages(out, state.Updates, a)
		case search.SectionIgnoredUpdates:
			err = printPackages(out, state.IgnoredUpdates, a)
		case search.SectionProvisional:
			err = printProvisional(out, state.Provisional)
		case search.SectionSearchHistory:
			for _, term := range state.SearchHistory {
				p.Printf("  %s", term)
			}
		default:
			err = printPackages(out, state.Packages, a)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func printPackages(out io.Writer, pkgs []catalog.Package, a annotate.Annotator) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tID\tVERSION\tSTATE")

	for _, pkg := range pkgs {
		state := ""
		if badge := a.Badge(pkg); !badge.Hidden {
			state = string(badge.State)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", pkg.DisplayName(), pkg.ID, pkg.Version, state)
	}

	return w.Flush()
}

func printProvisional(out io.Writer, pkgs []catalog.ProvisionalPackage) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tID\tVERSION\tREPO")

	for _, pkg := range pkgs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", pkg.DisplayName(), pkg.ID, pkg.Version, pkg.Repo)
	}

	return w.Flush()
}
