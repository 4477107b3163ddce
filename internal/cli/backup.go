package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitflow/internal/backup"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Snapshot every key of the store."`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the store's contents with a backup."`
}

func (c *Context) backups() *backup.Manager {
	return backup.NewManager(c.Store, c.Settings.ConfigDir, c.Clock)
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	backupPath, err := ctx.backups().CreateBackup(context.Background())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	mgr := ctx.backups()
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		ctx.println("No backups found.")
		ctx.printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), backup.MaxBackups)
	for _, b := range backups {
		ctx.printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), float64(b.Size)/1024.0)
	}
	ctx.printf("\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	mgr := ctx.backups()
	backupPath, err := mgr.Resolve(c.BackupFile)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title("Replace all stored data with " + filepath.Base(backupPath) + "?").
			Description("A backup of the current data is taken first.").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.println("Restore cancelled.")
			return nil
		}
	}

	safety, err := mgr.RestoreBackup(context.Background(), backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	ctx.printf("Created backup of current data: %s\n", filepath.Base(safety))
	ctx.println("✓ Data restored successfully!")
	return nil
}
