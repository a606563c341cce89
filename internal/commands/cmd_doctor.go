package commands

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parcel/internal/commands/doctor"
	"github.com/hay-kot/parcel/internal/printer"
)

type DoctorCmd struct {
	flags  *Flags
	format string
	fix    bool
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your parcel setup",
		UsageText:   "parcel doctor [options]",
		Description: "Runs diagnostic checks on the configuration, the catalog and the stored history, wishlist and preferences.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "fix",
				Usage:       "repair fixable issues",
				Destination: &cmd.fix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	checks := []doctor.Check{
		doctor.NewConfigCheck(cmd.flags.Config),
		doctor.NewDataCheck(cmd.flags.Config),
	}
	if svc := cmd.flags.Service; svc != nil {
		checks = append(checks, doctor.NewOrphanCheck(svc.Wishlist, svc.Catalog, cmd.fix))
	}

	report := doctor.Run(ctx, checks)

	if cmd.format == "json" {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		cmd.outputText(ctx, report)
	}

	if !report.Healthy {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) outputText(ctx context.Context, report doctor.Report) {
	p := printer.Ctx(ctx)

	for _, result := range report.Checks {
		p.Section(result.Name)

		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail, item.Hint)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail, item.Hint)
			}
		}

		p.Printf("")
	}

	sum := report.Summary
	p.Printf("Summary: %d passed, %d warnings, %d failed", sum.Passed, sum.Warned, sum.Failed)

	if sum.Fixable > 0 && !cmd.fix {
		p.Infof("%d issue(s) can be repaired with --fix", sum.Fixable)
	}
}
