package data

import (
	"fmt"

	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	days, err := ctx.Store.Load()
	if err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	ctx.Printf("Validating %d activities across %d days...\n\n", days.ActivityCount(), len(days))
	result := validation.New().ValidateDays(days)
	ctx.Println(result.FormatReport())

	if result.HasErrors() {
		return fmt.Errorf("stored data has %d error(s)", len(result.Errors()))
	}
	return nil
}
