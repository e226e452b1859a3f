package data

import (
	"fmt"
	"os"

	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/storage/records"
	"github.com/julianstephens/timeflow/internal/validation"
)

type ImportCmd struct {
	File    string `arg:"" help:"JSON file produced by 'timeflow export'." type:"existingfile"`
	Replace bool   `help:"Replace all stored activities instead of merging."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	l, err := ctx.RequireLedger()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	days, err := records.Decode(raw)
	if err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	result := validation.New().ValidateDays(days)
	if result.HasErrors() {
		ctx.Println(result.FormatReport())
		return fmt.Errorf("import file has %d error(s); nothing was imported", len(result.Errors()))
	}
	for _, conflict := range result.Conflicts {
		ctx.Printf("Warning: %s\n", conflict.Description)
	}

	ctx.PerformAutomaticBackup()

	res, err := l.Import(days, c.Replace)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	ctx.Printf("Imported %d activities across %d days", res.Added, res.Days)
	if res.Skipped > 0 {
		ctx.Printf(" (%d already present, skipped)", res.Skipped)
	}
	ctx.Println()
	return nil
}
