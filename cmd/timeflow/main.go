package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/cli/activities"
	"github.com/julianstephens/timeflow/internal/cli/backups"
	"github.com/julianstephens/timeflow/internal/cli/data"
	"github.com/julianstephens/timeflow/internal/cli/reports"
	"github.com/julianstephens/timeflow/internal/cli/system"
	"github.com/julianstephens/timeflow/internal/constants"
	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/ledger"
	"github.com/julianstephens/timeflow/internal/lock"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/notifier"
	"github.com/julianstephens/timeflow/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Data file path (.db for SQLite, .json for JSON) or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables, .pgpass, or the OS keyring instead." type:"string" default:"${default_config}" env:"TIMEFLOW_CONFIG"`
	Debug   bool   `help:"Enable debug logging to stderr." env:"TIMEFLOW_DEBUG"`
	Notify  bool   `help:"Send desktop notifications when a day crosses a progress threshold." env:"TIMEFLOW_NOTIFY"`

	Init     system.InitCmd       `cmd:"" help:"Initialize timeflow storage."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Add      activities.AddCmd    `cmd:"" help:"Log an activity."`
	Edit     activities.EditCmd   `cmd:"" help:"Edit a logged activity."`
	Delete   activities.DeleteCmd `cmd:"" help:"Delete a logged activity."`
	Day      activities.DayCmd    `cmd:"" help:"Show the activities logged on a day."`
	Days     activities.DaysCmd   `cmd:"" help:"List days with logged activities."`
	Stats    reports.StatsCmd     `cmd:"" help:"Show analytics across all days."`
	Validate data.ValidateCmd     `cmd:"" help:"Check stored activities for integrity problems."`
	Export   data.ExportCmd       `cmd:"" help:"Export all activities as JSON."`
	Import   data.ImportCmd       `cmd:"" help:"Import activities from a JSON export."`
	Migrate  data.MigrateCmd      `cmd:"" help:"Run database migrations or copy data to another backend."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage data backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
}

// commands that run before the store is opened
var storelessCommands = map[string]bool{
	"init": true,
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal time tracking: log what you did, see where the day went."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	appCtx, cleanup, err := setup(kctx)
	if err != nil {
		apperrors.Fatal(err)
	}

	err = kctx.Run(appCtx)
	cleanup()
	apperrors.Fatal(err)
}

// setup builds the command context. The returned cleanup releases the lock
// and closes the store.
func setup(kctx *kong.Context) (*cli.Context, func(), error) {
	noop := func() {}

	command := strings.Fields(kctx.Command())[0]
	if command == "keyring" {
		if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: defaultConfigDir()}); err != nil {
			return nil, noop, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return &cli.Context{}, noop, nil
	}

	store, err := storage.New(CLI.Config)
	if err != nil {
		return nil, noop, err
	}

	dir, err := storage.ConfigDir(store)
	if err != nil {
		return nil, noop, err
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: dir}); err != nil {
		return nil, noop, fmt.Errorf("failed to initialize logger: %w", err)
	}

	appCtx := &cli.Context{
		Store:    store,
		Notifier: notifier.New(CLI.Notify),
	}
	if storelessCommands[command] {
		return appCtx, func() { store.Close() }, nil
	}

	// Lock before Open so two processes never migrate the same store at once.
	held, err := lock.Acquire(dir)
	if err != nil {
		return nil, noop, err
	}
	release := func() {
		if err := held.Release(); err != nil {
			logger.Warn("Failed to release lock", "error", err)
		}
	}

	if err := store.Open(); err != nil {
		if !errors.Is(err, apperrors.ErrNotInitialized) {
			release()
			return nil, noop, err
		}
		logger.Info("No existing data, initializing storage", "config", store.GetConfigPath())
		if err := store.Init(); err != nil {
			release()
			return nil, noop, err
		}
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
		release()
	}

	appCtx.Ledger = ledger.Open(store)
	if err := appCtx.Ledger.LoadErr(); err != nil {
		cleanup()
		return nil, noop, err
	}
	return appCtx, cleanup, nil
}

func defaultConfigDir() string {
	path, err := storage.ExpandPath(constants.DefaultConfigPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(path)
}
