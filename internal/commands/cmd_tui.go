package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parcel/internal/parcel"
	"github.com/hay-kot/parcel/internal/tui"
)

type TuiCmd struct {
	flags *Flags

	view string
	repo string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "view",
			Usage:       "list shown first (search, installed, wishlist, history, repo)",
			Value:       string(parcel.ViewSearch),
			Destination: &cmd.view,
			Local:       true,
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "repository URL or glob, adds a repo tab",
			Destination: &cmd.repo,
			Local:       true,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	name := cmd.view
	if cmd.repo != "" && name == string(parcel.ViewSearch) {
		name = string(parcel.ViewRepo)
	}

	view, err := parcel.ParseView(name, cmd.repo)
	if err != nil {
		return err
	}

	m := tui.New(ctx, cmd.flags.Service, cmd.flags.Config, tui.Options{View: view})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
