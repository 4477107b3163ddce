package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitflow/internal/keyring"
	"github.com/julianstephens/habitflow/internal/migration"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/validation"
)

// migrationReporter is implemented by the SQL stores
type migrationReporter interface {
	MigrationStatus() (migration.Status, error)
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	report := func(name string, err error) bool {
		if err != nil {
			ctx.printf("❌ %s: FAIL\n", name)
			ctx.printf("   Error: %v\n", err)
			hasError = true
			return false
		}
		ctx.printf("✓ %s: OK\n", name)
		return true
	}

	dbReachable := report("Storage reachable", checkStoreReachable(ctx))

	if dbReachable {
		if _, ok := ctx.Store.(migrationReporter); ok {
			report("Migrations complete", checkMigrationsComplete(ctx))
		} else {
			ctx.printf("⊘ Migrations complete: SKIPPED (%s has no schema)\n", ctx.Settings.Backend)
		}
	} else {
		ctx.println("⊘ Migrations complete: SKIPPED (storage not reachable)")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		ctx.println("⚠ Backups present: WARNING")
		ctx.printf("   %v\n", err)
	} else {
		ctx.println("✓ Backups present: OK")
	}

	if keyring.IsAvailable() {
		ctx.println("✓ OS keyring: OK")
	} else {
		ctx.println("⚠ OS keyring: WARNING")
		ctx.println("   keyring unavailable; pass connection strings with --dsn or HABITFLOW_DB_CONNECTION")
	}

	if dbReachable {
		checkSessionData(ctx, report)
	} else {
		ctx.println("⊘ Data validation: SKIPPED (storage not reachable)")
	}

	report("Clock/timezone", checkClockTimezone(ctx))

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.ListKeys(context.Background()); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkMigrationsComplete(ctx *Context) error {
	status, err := ctx.Store.(migrationReporter).MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	if status.Pending() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d, run 'habitflow init'", status.Current, status.Latest)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	backups, err := ctx.backups().ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitflow backup create'")
	}
	return nil
}

// checkSessionData validates the logged-in user's data, skipping when
// nobody is logged in.
func checkSessionData(ctx *Context, report func(string, error) bool) {
	bg := context.Background()
	ns, err := ctx.Tracker.Sessions.Begin(bg)
	if session.IsNoSession(err) {
		ctx.println("⊘ Data validation: SKIPPED (no user logged in)")
		return
	}
	if err != nil {
		report("Data validation", err)
		return
	}

	result := validation.New().ValidateData(
		ctx.Tracker.Habits.List(bg, ns),
		ctx.Tracker.Goals.List(bg, ns),
		ctx.Tracker.Habits.Ledger(bg, ns),
	)
	if result.HasConflicts() {
		report("Data validation", fmt.Errorf("%d conflict(s) found, run 'habitflow validate'", len(result.Conflicts)))
		return
	}
	report("Data validation", nil)
}

func checkClockTimezone(ctx *Context) error {
	now := ctx.Clock()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := ctx.Settings.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", ctx.Settings.Timezone, err)
	}
	if now.Location() == time.UTC {
		ctx.println("   Note: timezone is UTC")
	}
	return nil
}
