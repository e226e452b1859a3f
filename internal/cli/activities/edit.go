package activities

import (
	"fmt"

	"github.com/julianstephens/timeflow/internal/cli"
	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/ledger"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

type EditCmd struct {
	ID       string `arg:"" help:"ID of the activity to edit."`
	Name     string `help:"New name."`
	Category string `short:"c" help:"New category."`
	Duration string `short:"d" help:"New duration (90, 1:30 or 1h30m)."`
	Date     string `help:"Day the activity is logged on. Looked up by ID when omitted."`
}

func (c *EditCmd) Validate() error {
	if c.Name == "" && c.Category == "" && c.Duration == "" {
		return fmt.Errorf("nothing to change: pass --name, --category or --duration")
	}
	if c.Duration != "" {
		if _, err := utils.ParseDuration(c.Duration); err != nil {
			return err
		}
	}
	return nil
}

func (c *EditCmd) patch() (models.ActivityPatch, error) {
	var patch models.ActivityPatch
	if c.Name != "" {
		name := c.Name
		patch.Name = &name
	}
	if c.Category != "" {
		category := c.Category
		patch.Category = &category
	}
	if c.Duration != "" {
		minutes, err := utils.ParseDuration(c.Duration)
		if err != nil {
			return patch, err
		}
		patch.Minutes = &minutes
	}
	return patch, nil
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	l, err := ctx.RequireLedger()
	if err != nil {
		return err
	}
	if err := selectActivityDay(ctx, l, c.ID, c.Date); err != nil {
		return err
	}

	patch, err := c.patch()
	if err != nil {
		return err
	}
	if patch.Minutes != nil {
		if max := l.MaxMinutesFor(c.ID); *patch.Minutes > max {
			return cli.MaxAvailableError(*patch.Minutes, max)
		}
	}

	before := l.TotalMinutes()
	updated, err := l.Update(c.ID, patch)
	if err != nil {
		return err
	}

	ctx.Printf("Updated activity: %s [%s] %s (ID: %s)\n",
		updated.Name, models.LookupCategory(updated.Category).Label,
		utils.FormatMinutes(updated.Minutes), updated.ID)
	ctx.NotifyProgress(before)
	return nil
}

// selectActivityDay points the ledger at the day holding id: the --date
// value when given, otherwise wherever id is found.
func selectActivityDay(ctx *cli.Context, l *ledger.Ledger, id, date string) error {
	if date != "" {
		day, err := ctx.ResolveDay(date)
		if err != nil {
			return err
		}
		return l.SelectDay(day)
	}
	day, _, ok := l.Find(id)
	if !ok {
		return fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, id)
	}
	return l.SelectDay(day)
}
