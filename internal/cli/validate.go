package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Repair stale completions, bad date keys and over-target goals."`
}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	bg := context.Background()
	ns, err := ctx.Tracker.Sessions.Begin(bg)
	if err != nil {
		return err
	}

	habits := ctx.Tracker.Habits.List(bg, ns)
	goals := ctx.Tracker.Goals.List(bg, ns)
	ledger := ctx.Tracker.Habits.Ledger(bg, ns)

	ctx.println("Validating habits, goals and completions...")
	result := validation.New().ValidateData(habits, goals, ledger)
	ctx.println()
	ctx.println(result.FormatReport())

	if !result.HasConflicts() || !cmd.Fix {
		return nil
	}

	actions := validation.AutoFix(result.Conflicts, ledger, goals)
	if len(actions) == 0 {
		ctx.println("Nothing can be fixed automatically.")
		return nil
	}

	ledgerOp, err := ctx.Tracker.Habits.LedgerOp(ns, ledger)
	if err != nil {
		return err
	}
	goalsOp, err := ctx.Tracker.Goals.SaveOp(ns, goals)
	if err != nil {
		return err
	}
	if err := storage.Apply(bg, ctx.Store, ledgerOp, goalsOp); err != nil {
		return fmt.Errorf("failed to save fixes: %w", err)
	}

	ctx.printf("Applied %d fix(es):\n", len(actions))
	for _, a := range actions {
		ctx.printf("  - %s\n", a.Action)
	}
	return nil
}
