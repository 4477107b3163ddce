package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitflow/internal/config"
	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing local database and overwrite config.toml."`
	Source string `help:"Database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *Context) error {
	local := ctx.Settings.Backend == constants.BackendSQLite || ctx.Settings.Backend == constants.BackendJSON

	if c.Force && local {
		dbPath := ctx.Settings.DSN
		if c.Source != "" {
			absDB, errDB := filepath.Abs(dbPath)
			absSrc, errSrc := filepath.Abs(config.ExpandPath(c.Source))
			if errDB == nil && errSrc == nil && absDB == absSrc {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.Describe())

	if err := c.writeConfig(ctx, local); err != nil {
		return err
	}

	if c.Source != "" {
		ctx.printf("Copying data from: %s\n", c.Source)
		n, err := c.copyFrom(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.printf("Copied %d keys\n", n)
	}
	return nil
}

// writeConfig records the backend in config.toml unless a config file
// already exists. Remote connection strings stay in the keyring or env.
func (c *InitCmd) writeConfig(ctx *Context, local bool) error {
	if ctx.ConfigFile == "" || (ctx.Settings.FileFound && !c.Force) {
		return nil
	}
	f := config.File{
		Backend:  string(ctx.Settings.Backend),
		Timezone: ctx.Settings.Timezone,
	}
	if local {
		f.DSN = ctx.Settings.DSN
	}
	if err := config.Write(ctx.ConfigFile, f); err != nil {
		return err
	}
	ctx.printf("Wrote config: %s\n", config.ExpandPath(ctx.ConfigFile))
	return nil
}

func (c *InitCmd) copyFrom(ctx *Context) (int, error) {
	src, err := OpenStore(&config.Settings{
		Backend: config.DetectBackend(c.Source),
		DSN:     config.ExpandPath(c.Source),
	})
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	return storage.Copy(context.Background(), ctx.Store, src)
}
