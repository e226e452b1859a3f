package activities

import (
	"fmt"
	"strings"

	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

type AddCmd struct {
	Name     string `arg:"" help:"Activity name."`
	Duration string `short:"d" help:"Duration (90, 1:30 or 1h30m)." required:""`
	Category string `short:"c" help:"Category (work|exercise|learning|personal|social|rest|other)." default:"work"`
	Date     string `help:"Day to log against (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *AddCmd) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if _, err := utils.ParseDuration(c.Duration); err != nil {
		return err
	}
	return nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	l, err := ctx.RequireLedger()
	if err != nil {
		return err
	}
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	minutes, err := utils.ParseDuration(c.Duration)
	if err != nil {
		return err
	}
	if err := l.SelectDay(day); err != nil {
		return err
	}

	if max := l.MaxMinutesFor(""); minutes > max {
		return cli.MaxAvailableError(minutes, max)
	}

	before := l.TotalMinutes()
	activity, err := l.Add(models.NewActivity{
		Name:     c.Name,
		Category: c.Category,
		Minutes:  minutes,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added activity: %s (%s) on %s (ID: %s)\n",
		activity.Name, utils.FormatMinutes(activity.Minutes), day, activity.ID)
	ctx.Printf("%s remaining for %s\n", utils.FormatMinutes(l.RemainingMinutes()), day)
	ctx.NotifyProgress(before)
	return nil
}
