package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/parcel/internal/core/history"
	"github.com/hay-kot/parcel/internal/printer"
	"github.com/hay-kot/parcel/internal/styles"
)

const timeFormat = "2006-01-02 15:04:05"

type HistoryCmd struct {
	flags *Flags

	// Command-specific flags
	clear    bool
	yes      bool
	timeline bool
	json     bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "View or manage the package action history",
		UsageText: "parcel history [options]",
		Description: `View or manage the recorded install, update and removal history.

By default, lists entries newest first. Use --timeline to group entries
recorded in the same second, the way one transaction is shown.
Use --clear to remove all history entries.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "clear",
				Aliases:     []string{"c"},
				Usage:       "clear all package history",
				Destination: &cmd.clear,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt for --clear",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "timeline",
				Aliases:     []string{"t"},
				Usage:       "group entries by transaction",
				Destination: &cmd.timeline,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.clear {
		return cmd.runClear(ctx, p)
	}

	if cmd.timeline {
		return cmd.runTimeline(ctx, c)
	}

	return cmd.runList(ctx, c)
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	entries := cmd.flags.Service.Ledger.Timeline()

	out := c.Root().Writer
	if cmd.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		printer.Ctx(ctx).Infof("No package history")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tACTION\tID\tVERSION\tPREVIOUS")

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Time().Format(timeFormat),
			actionLabel(e.Action),
			e.ID,
			e.VersionString(),
			e.PreviousVersionString(),
		)
	}

	return w.Flush()
}

func (cmd *HistoryCmd) runTimeline(ctx context.Context, c *cli.Command) error {
	groups := cmd.flags.Service.Ledger.TimelineGroups()

	out := c.Root().Writer
	if cmd.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}

	if len(groups) == 0 {
		printer.Ctx(ctx).Infof("No package history")
		return nil
	}

	p := printer.New(out)
	for i, g := range groups {
		if i > 0 {
			p.Printf("")
		}
		p.Section(g.Time().Format(timeFormat))

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, e := range g.Entries {
			version := e.VersionString()
			if prev := e.PreviousVersionString(); prev != "" {
				version = prev + " -> " + version
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", actionLabel(e.Action), e.ID, version)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *HistoryCmd) runClear(ctx context.Context, p *printer.Printer) error {
	if !cmd.yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to clear history without confirmation (stdin is not a terminal); pass --yes")
		}

		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Clear package history?").
				Description(fmt.Sprintf("%d entries will be removed.", cmd.flags.Service.Ledger.Len())).
				Affirmative("Clear").
				Negative("Cancel").
				Value(&confirmed),
		)).WithTheme(styles.FormTheme()).Run()
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("History left unchanged")
			return nil
		}
	}

	if err := cmd.flags.Service.Ledger.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	p.Successf("Package history cleared")
	return nil
}

// actionLabel renders entries recorded before actions were tracked.
func actionLabel(a history.Action) string {
	if a == "" {
		return "-"
	}
	return string(a)
}
