package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/parcel/internal/styles"
)

const defaultWrapWidth = 80

type ShowCmd struct {
	flags *Flags

	// Command-specific flags
	json bool
	raw  bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags) *ShowCmd {
	return &ShowCmd{flags: flags}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show one package with its history",
		UsageText: "parcel show [options] <id>",
		Description: `Prints the package description, install state, queued action,
available update and recorded history for one package.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.json,
			},
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("package id is required")
	}

	detail, err := cmd.flags.Service.Detail(ctx, id)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	}

	md := detail.Markdown()
	if cmd.raw || !term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := fmt.Fprint(out, md)
		return err
	}

	width := defaultWrapWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = min(w, 120)
	}

	_, err = fmt.Fprint(out, styles.RenderMarkdown(md, width))
	return err
}
