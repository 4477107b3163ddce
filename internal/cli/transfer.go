package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/export"
)

type ExportCmd struct {
	Format string `help:"Output format: yaml or json. Defaults to the --output extension, else yaml."`
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	bg := context.Background()
	ns, err := ctx.Tracker.Sessions.Begin(bg)
	if err != nil {
		return err
	}
	bundle, err := export.Build(bg, ctx.Tracker.Habits, ctx.Tracker.Goals, ns, ctx.Clock())
	if err != nil {
		return err
	}

	if err := checkFormat(c.Format); err != nil {
		return err
	}
	format := c.Format
	if format == "" {
		format = constants.ExportYAML
		if c.Output != "" {
			format = export.FormatFromPath(c.Output)
		}
	}

	if c.Output == "" {
		return export.Encode(ctx.Out, bundle, format)
	}

	f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.Encode(f, bundle, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	ctx.printf("Exported %d habits and %d goals to %s\n", len(bundle.Habits), len(bundle.Goals), c.Output)
	return nil
}

type ImportCmd struct {
	File   string `arg:"" help:"Export file to import ('-' reads stdin)."`
	Format string `help:"Input format: yaml or json. Defaults to the file extension."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	bg := context.Background()
	ns, err := ctx.Tracker.Sessions.Begin(bg)
	if err != nil {
		return err
	}

	if err := checkFormat(c.Format); err != nil {
		return err
	}

	var r io.Reader
	if c.File == "-" {
		r = ctx.In
	} else {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	format := c.Format
	if format == "" {
		format = export.FormatFromPath(c.File)
	}
	bundle, err := export.Decode(r, format)
	if err != nil {
		return err
	}
	if bundle.User.Email != "" && !strings.EqualFold(bundle.User.Email, ns.User.Email) {
		ctx.printf("Note: importing data exported by %s into %s\n", bundle.User.Email, ns.User.Email)
	}

	res, err := export.Import(bg, ctx.Store, ctx.Tracker.Habits, ctx.Tracker.Goals, ns, bundle)
	if err != nil {
		return err
	}
	ctx.printf("Habits: %d added, %d updated\n", res.HabitsAdded, res.HabitsUpdated)
	ctx.printf("Goals: %d added, %d updated\n", res.GoalsAdded, res.GoalsUpdated)
	ctx.printf("Completions: %d added\n", res.Completions)
	if res.Conflicts.HasConflicts() {
		ctx.println()
		ctx.println(res.Conflicts.FormatReport())
		ctx.printf("Run '%s validate --fix' to repair what can be repaired automatically.\n", constants.AppName)
	}
	return nil
}

func checkFormat(format string) error {
	switch format {
	case "", constants.ExportYAML, constants.ExportJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (expected yaml or json)", format)
}
