package activities

import (
	"fmt"

	"github.com/julianstephens/timeflow/internal/cli"
	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/utils"
)

type DeleteCmd struct {
	ID   string `arg:"" help:"ID of the activity to delete."`
	Date string `help:"Day the activity is logged on. Looked up by ID when omitted."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	l, err := ctx.RequireLedger()
	if err != nil {
		return err
	}
	if err := selectActivityDay(ctx, l, c.ID, c.Date); err != nil {
		return err
	}

	var name string
	found := false
	for _, a := range l.Activities() {
		if a.ID == c.ID {
			name, found = a.Name, true
		}
	}
	if !found {
		return fmt.Errorf("%w: activity %s on %s", apperrors.ErrNotFound, c.ID, l.Day())
	}

	if err := l.Remove(c.ID); err != nil {
		return err
	}

	ctx.Printf("Deleted activity: %s\n", name)
	ctx.Printf("%s remaining for %s\n", utils.FormatMinutes(l.RemainingMinutes()), l.Day())
	return nil
}
