package data

import (
	"errors"
	"fmt"

	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/migration"
	"github.com/julianstephens/timeflow/internal/storage"
)

// schemaStore is implemented by the SQL backends.
type schemaStore interface {
	Runner() (*migration.Runner, error)
}

// MigrateCmd applies pending schema migrations, or with --to copies every
// stored activity into another backend.
type MigrateCmd struct {
	To string `help:"Copy all data into this backend (path, .json file or PostgreSQL URL)."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if c.To != "" {
		return c.copyTo(ctx)
	}

	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return errors.New("schema migrations only apply to SQLite and PostgreSQL storage")
	}
	runner, err := s.Runner()
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}

func (c *MigrateCmd) copyTo(ctx *cli.Context) error {
	days, err := ctx.Store.Load()
	if err != nil {
		return fmt.Errorf("failed to load source data: %w", err)
	}

	target, err := storage.New(c.To)
	if err != nil {
		return err
	}
	if target.GetConfigPath() == ctx.Store.GetConfigPath() {
		return fmt.Errorf("source and destination are the same: %s", target.GetConfigPath())
	}
	if err := target.Init(); err != nil {
		return fmt.Errorf("failed to initialize destination: %w", err)
	}
	defer target.Close()

	if err := target.Save(days); err != nil {
		return fmt.Errorf("failed to write destination: %w", err)
	}

	ctx.Printf("Copied %d activities across %d days to %s\n", days.ActivityCount(), len(days), target.GetConfigPath())
	return nil
}
