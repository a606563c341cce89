package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parcel/internal/core/prefs"
	"github.com/hay-kot/parcel/internal/printer"
)

type PrefsCmd struct {
	flags *Flags

	// ls flag
	json bool

	// watch flag
	timeout time.Duration
}

// NewPrefsCmd creates a new prefs command.
func NewPrefsCmd(flags *Flags) *PrefsCmd {
	return &PrefsCmd{flags: flags}
}

// Register adds the prefs and sort commands to the application.
func (cmd *PrefsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:  "prefs",
			Usage: "View or change list preferences",
			Description: `Preferences control how package lists are computed and laid out.

Keys:
  install_sort_type     installed list order (name, installdate, size)
  show_ignored_updates  show held updates in their own section
  show_provisional      merge packages from sources that are not yet added
  show_search_history   remember searches and offer them on an empty query

Preferences are shared across parcel processes; a running browser picks
up changes made here.`,
			Commands: []*cli.Command{
				cmd.listCmd(),
				cmd.setCmd(),
				cmd.resetCmd(),
				cmd.watchCmd(),
			},
		},
		&cli.Command{
			Name:      "sort",
			Usage:     "Set the installed list order",
			UsageText: "parcel sort <name|installdate|size>",
			Action:    cmd.runSort,
		},
	)

	return app
}

func (cmd *PrefsCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:    "ls",
		Aliases: []string{"list"},
		Usage:   "List every preference with its effective value",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *PrefsCmd) setCmd() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a preference",
		ArgsUsage: "<key> <value>",
		Action:    cmd.runSet,
	}
}

func (cmd *PrefsCmd) resetCmd() *cli.Command {
	return &cli.Command{
		Name:      "reset",
		Usage:     "Return a preference to its default",
		ArgsUsage: "<key>",
		Action:    cmd.runReset,
	}
}

func (cmd *PrefsCmd) watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Wait for a preference to change and print the new value",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "give up after this long",
				Value:       5 * time.Minute,
				Destination: &cmd.timeout,
			},
		},
		Action: cmd.runWatch,
	}
}

func (cmd *PrefsCmd) runList(ctx context.Context, c *cli.Command) error {
	settings, err := cmd.flags.Service.Prefs.All(ctx)
	if err != nil {
		return fmt.Errorf("list preferences: %w", err)
	}

	out := c.Root().Writer
	if cmd.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(settings)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tVALUE\tUPDATED")

	for _, s := range settings {
		updated := "(default)"
		if !s.IsDefault {
			updated = s.UpdatedAt.Local().Format(timeFormat)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Value, updated)
	}

	return w.Flush()
}

func (cmd *PrefsCmd) runSet(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected <key> <value>")
	}

	key, value := c.Args().Get(0), c.Args().Get(1)
	if err := cmd.flags.Service.Prefs.Set(ctx, key, value); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("%s = %s", key, value)
	return nil
}

func (cmd *PrefsCmd) runReset(ctx context.Context, c *cli.Command) error {
	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("expected <key>")
	}

	if err := cmd.flags.Service.Prefs.Reset(ctx, key); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("%s reset to %s", key, prefs.Defaults[key])
	return nil
}

func (cmd *PrefsCmd) runWatch(ctx context.Context, c *cli.Command) error {
	key := c.Args().First()
	if _, ok := prefs.Defaults[key]; !ok {
		return fmt.Errorf("%w: %q", prefs.ErrUnknownKey, key)
	}

	entry, err := cmd.flags.Service.Prefs.Watch(ctx, key, time.Now(), cmd.timeout)
	if errors.Is(err, context.DeadlineExceeded) {
		printer.Ctx(ctx).Infof("%s unchanged after %s", key, cmd.timeout)
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch %s: %w", key, err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, entry.Value)
	return nil
}

func (cmd *PrefsCmd) runSort(ctx context.Context, c *cli.Command) error {
	mode := c.Args().First()
	if mode == "" {
		printer.Ctx(ctx).Printf("%s", cmd.flags.Service.Prefs.SortMode(ctx))
		return nil
	}

	if err := cmd.flags.Service.Prefs.Set(ctx, prefs.KeySortMode, mode); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Installed packages sorted by %s", mode)
	return nil
}
