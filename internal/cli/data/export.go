package data

import (
	"fmt"
	"os"

	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/storage/records"
)

type ExportCmd struct {
	Out string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	l, err := ctx.RequireLedger()
	if err != nil {
		return err
	}

	days := l.Snapshot()
	data, err := records.Encode(days)
	if err != nil {
		return err
	}

	if c.Out == "" {
		ctx.Println(string(data))
		return nil
	}
	if err := os.WriteFile(c.Out, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	ctx.Printf("Exported %d activities across %d days to %s\n", days.ActivityCount(), len(days), c.Out)
	return nil
}
