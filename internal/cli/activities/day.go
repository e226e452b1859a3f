package activities

import (
	"fmt"

	"github.com/julianstephens/timeflow/internal/analytics"
	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

type DayCmd struct {
	Date    string `help:"Day to show (YYYY-MM-DD, today, yesterday)." default:"today"`
	ShowIDs bool   `help:"Show activity IDs." name:"show-ids"`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	l, err := ctx.RequireLedger()
	if err != nil {
		return err
	}
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	if err := l.SelectDay(day); err != nil {
		return err
	}

	data := l.DayData()
	ctx.Printf("%s (%s)\n", utils.FormatDayLabel(day, constants.LongDayFormat), day)

	if len(data.Activities) == 0 {
		ctx.Println(constants.EmptyActivitiesText)
		return nil
	}

	progress := analytics.DayProgress(data.TotalMinutes)
	ctx.Printf("Tracked: %s (%.1f%% of the day, %s remaining) [%s]\n\n",
		utils.FormatMinutes(data.TotalMinutes), progress.Percent, progress.Remaining, progress.Level)

	for _, a := range data.Activities {
		idStr := ""
		if c.ShowIDs {
			idStr = " (ID: " + a.ID + ")"
		}
		ctx.Printf("  %-8s %s%s [%s]\n",
			utils.FormatMinutes(a.Minutes), a.Name, idStr, models.LookupCategory(a.Category).Label)
	}
	return nil
}

type DaysCmd struct {
	Limit int `short:"n" help:"Show only the N most recent days (0 for all)." default:"0"`
}

func (c *DaysCmd) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

func (c *DaysCmd) Run(ctx *cli.Context) error {
	l, err := ctx.RequireLedger()
	if err != nil {
		return err
	}

	days := l.AllDays()
	if len(days) == 0 {
		ctx.Println(constants.EmptyActivitiesText)
		return nil
	}
	if c.Limit > 0 && c.Limit < len(days) {
		days = days[:c.Limit]
	}

	ctx.Println("Days:")
	for _, d := range days {
		noun := "activities"
		if len(d.Activities) == 1 {
			noun = "activity"
		}
		ctx.Printf("  %s  %s  %-8s %d %s\n",
			d.Date, utils.FormatDayLabel(d.Date, constants.ShortDayFormat),
			utils.FormatMinutes(d.TotalMinutes), len(d.Activities), noun)
	}
	return nil
}
