package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitflow/internal/cli"
	"github.com/julianstephens/habitflow/internal/config"
	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/utils"
)

type CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"string" default:"${config_file}"`
	Backend  string `help:"Storage backend: sqlite, postgres, redis, mongo, json or memory. Detected from --dsn when omitted."`
	DSN      string `help:"Database path or connection string. Remote credentials belong in the keyring or the environment." env:"HABITFLOW_DB_CONNECTION"`
	Timezone string `help:"IANA timezone used to decide what 'today' is."`
	Debug    bool   `help:"Log debug output to stderr."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize habitflow storage."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Register cli.RegisterCmd `cmd:"" help:"Create an account and log in."`
	Login    cli.LoginCmd    `cmd:"" help:"Log in."`
	Logout   cli.LogoutCmd   `cmd:"" help:"Log out."`
	Whoami   cli.WhoamiCmd   `cmd:"" help:"Show the logged-in user."`
	Habit    cli.HabitCmd    `cmd:"" help:"Manage habits and mark them done."`
	Goal     cli.GoalCmd     `cmd:"" help:"Show goals."`
	Stats    cli.StatsCmd    `cmd:"" help:"Show completion stats and streaks."`
	Progress cli.ProgressCmd `cmd:"" help:"Show goal progress bars."`
	Report   cli.ReportCmd   `cmd:"" help:"Render a markdown progress report."`
	Export   cli.ExportCmd   `cmd:"" help:"Export your profile, habits, goals and completions."`
	Import   cli.ImportCmd   `cmd:"" help:"Merge an export file into your data."`
	Validate cli.ValidateCmd `cmd:"" help:"Check completions and goals for inconsistencies."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage backups."`
	Keyring  cli.KeyringCmd  `cmd:"" help:"Manage connection strings in the OS keyring."`
	DebugCmd cli.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	var app CLI
	ctx := kong.Parse(&app,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with goals, streaks and progress reports"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
		},
	)

	settings, err := config.Load(config.Flags{
		ConfigFile: app.Config,
		Backend:    app.Backend,
		DSN:        app.DSN,
		Timezone:   app.Timezone,
		Debug:      app.Debug,
	})
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     settings.Debug,
		Dir:       settings.LogDir,
		ConfigDir: settings.ConfigDir,
	}); err != nil {
		apperrors.Fatal(err)
	}

	loc, err := settings.Location()
	if err != nil {
		apperrors.Fatal(err)
	}
	clock := utils.SystemClock(loc)

	store, err := cli.OpenStore(settings)
	if err != nil {
		apperrors.Fatal(err)
	}

	logger.Debug("Starting", "command", ctx.Command(), "backend", settings.Backend, "location", store.Describe())
	if cli.NeedsLoad(ctx.Command()) {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	appCtx := &cli.Context{
		Store:      store,
		Tracker:    tracker.New(store, clock),
		Settings:   settings,
		Clock:      clock,
		Out:        os.Stdout,
		In:         os.Stdin,
		ConfigFile: app.Config,
	}
	err = ctx.Run(appCtx)
	if cerr := store.Close(); err == nil {
		err = cerr
	}
	apperrors.Fatal(err)
}
