package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parcel/internal/core/annotate"
	"github.com/hay-kot/parcel/internal/core/catalog"
	"github.com/hay-kot/parcel/internal/parcel"
	"github.com/hay-kot/parcel/internal/printer"
	"github.com/hay-kot/parcel/pkg/tmpl"
)

type ExportCmd struct {
	flags *Flags

	// Command-specific flags
	view   string
	repo   string
	format string
	output string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export a package list as text",
		UsageText: "parcel export [options] [query...]",
		Description: `Writes one line per package of the chosen list.

The default line is "name:(id) version". Packages without a name are
skipped in the default format. A Go template can be given with --format;
it receives each package:

  parcel export --format '{{ .ID }}={{ .Version }}'
  parcel export --view wishlist --format 'apt install {{ .ID | shq }}'

Fields: .ID .Name .Version .Description .Author .Repo .Section
Functions: shq, default, lower, upper`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "view",
				Usage:       "package list to export (search, installed, wishlist, history, repo)",
				Value:       string(parcel.ViewInstalled),
				Destination: &cmd.view,
			},
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "repository URL or glob for the repo view",
				Destination: &cmd.repo,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "Go template for each line",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to file instead of stdout",
				Destination: &cmd.output,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	view, err := parcel.ParseView(cmd.view, cmd.repo)
	if err != nil {
		return err
	}

	query := strings.Join(c.Args().Slice(), " ")
	state, err := loadView(ctx, cmd.flags.Service, view, query, false)
	if err != nil {
		return err
	}

	text, err := exportPackages(state.Packages, cmd.format)
	if err != nil {
		return err
	}

	var out io.Writer = c.Root().Writer
	if cmd.output != "" {
		f, err := os.Create(cmd.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if text != "" {
		if _, err := fmt.Fprintln(out, text); err != nil {
			return err
		}
	}

	if cmd.output != "" {
		printer.Ctx(ctx).Successf("Exported %d package(s) to %s", len(state.Packages), cmd.output)
	}
	return nil
}

// exportPackages renders pkgs in the default export format, or with
// format as a per-package template.
func exportPackages(pkgs []catalog.Package, format string) (string, error) {
	if format == "" {
		return annotate.Export(pkgs), nil
	}

	t, err := tmpl.Parse(format)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		line, err := t.Execute(p)
		if err != nil {
			return "", fmt.Errorf("%s: %w", p.ID, err)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}
