package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/parcel/internal/core/history"
	"github.com/hay-kot/parcel/internal/printer"
)

// RecordInput is the JSON input schema for recording a transaction.
type RecordInput struct {
	Action   string          `json:"action"`
	Packages []RecordPackage `json:"packages"`
}

// RecordPackage is one package of a recorded transaction.
type RecordPackage struct {
	ID              string `json:"id"`
	Version         string `json:"version,omitempty"`
	PreviousVersion string `json:"previous_version,omitempty"`
}

// Validate checks the record input for errors using criterio.
func (r RecordInput) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if _, ok := history.ParseAction(r.Action); !ok {
		errs = errs.Append("action", fmt.Errorf("unknown action %q (install, reinstall, uninstall, update)", r.Action))
	}

	if len(r.Packages) == 0 {
		errs = errs.Append("packages", fmt.Errorf("array is empty"))
	}

	seen := make(map[string]bool, len(r.Packages))
	for i, pkg := range r.Packages {
		field := fmt.Sprintf("packages[%d].id", i)

		if strings.TrimSpace(pkg.ID) == "" {
			errs = errs.Append(field, fmt.Errorf("id is required"))
			continue
		}
		if seen[pkg.ID] {
			errs = errs.Append(field, fmt.Errorf("duplicate id %q", pkg.ID))
			continue
		}
		seen[pkg.ID] = true
	}

	return errs.ToError()
}

// Items converts the input to ledger items. Call Validate first.
func (r RecordInput) Items() []history.Item {
	items := make([]history.Item, len(r.Packages))
	for i, pkg := range r.Packages {
		items[i] = history.Item{
			ID:              pkg.ID,
			NewVersion:      history.StringPtr(pkg.Version),
			PreviousVersion: history.StringPtr(pkg.PreviousVersion),
		}
	}
	return items
}

type RecordCmd struct {
	flags  *Flags
	file   string
	action string
}

func NewRecordCmd(flags *Flags) *RecordCmd {
	return &RecordCmd{flags: flags}
}

func (cmd *RecordCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "record",
		Usage: "Record a completed package transaction in the history",
		UsageText: `parcel record --action install <id>...

Read from stdin:
  echo '{"action":"update","packages":[{"id":"com.example.shell","version":"1.1","previous_version":"1.0"}]}' | parcel record

Read from file:
  parcel record -f transaction.json`,
		Description: `Appends one transaction to the package history. Every package in a
transaction shares a single timestamp.

With ids on the command line, versions are taken from the installed
packages in the catalog. JSON input may carry explicit versions.

Input JSON schema:
  {
    "action": "install | reinstall | uninstall | update",
    "packages": [
      {"id": "package-id", "version": "optional", "previous_version": "optional"}
    ]
  }`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "action",
				Aliases:     []string{"a"},
				Usage:       "action for ids given as arguments (install, reinstall, uninstall, update)",
				Destination: &cmd.action,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to JSON file (reads from stdin if not provided)",
				Destination: &cmd.file,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RecordCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if ids := c.Args().Slice(); len(ids) > 0 {
		input := RecordInput{Action: cmd.action}
		for _, id := range ids {
			input.Packages = append(input.Packages, RecordPackage{ID: id})
		}
		if err := input.Validate(); err != nil {
			return fmt.Errorf("invalid input: %w", err)
		}

		action, _ := history.ParseAction(input.Action)
		if err := cmd.flags.Service.RecordIDs(ctx, ids, action); err != nil {
			return err
		}

		p.Successf("Recorded %s of %d package(s)", action, len(ids))
		return nil
	}

	input, err := cmd.readInput()
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if err := input.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	action, _ := history.ParseAction(input.Action)
	if err := cmd.flags.Service.Record(ctx, input.Items(), action); err != nil {
		return err
	}

	p.Successf("Recorded %s of %d package(s)", action, len(input.Packages))
	return nil
}

func (cmd *RecordCmd) readInput() (RecordInput, error) {
	var reader io.Reader

	if cmd.file != "" {
		f, err := os.Open(cmd.file)
		if err != nil {
			return RecordInput{}, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return RecordInput{}, fmt.Errorf("no input provided (stdin is a terminal); pass ids, use -f flag or pipe JSON input")
		}
		reader = os.Stdin
	}

	return decodeRecordInput(reader)
}

func decodeRecordInput(r io.Reader) (RecordInput, error) {
	var input RecordInput
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return RecordInput{}, fmt.Errorf("decode JSON: %w", err)
	}
	return input, nil
}
