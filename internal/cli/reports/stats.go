package reports

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/julianstephens/timeflow/internal/analytics"
	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/utils"
)

const barWidth = 20

type StatsCmd struct {
	JSON bool `help:"Print the report as JSON."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	l, err := ctx.RequireLedger()
	if err != nil {
		return err
	}

	report, err := analytics.Compute(l.AllDays(), ctx.Clock())
	if errors.Is(err, analytics.ErrNoData) {
		if c.JSON {
			ctx.Println("null")
			return nil
		}
		ctx.Println(constants.EmptyAnalyticsTitle)
		ctx.Println(constants.EmptyAnalyticsText)
		return nil
	}
	if err != nil {
		return err
	}

	if c.JSON {
		// Hours are shown to one decimal everywhere a report is printed.
		report.Summary.AvgHoursPerDay = report.Summary.AvgHoursRounded()
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		ctx.Println(string(data))
		return nil
	}

	printReport(ctx, report)
	return nil
}

func printReport(ctx *cli.Context, r analytics.Report) {
	s := r.Summary
	ctx.Println("Summary:")
	ctx.Printf("  Total time:      %s (%.1fh)\n", utils.FormatMinutes(s.TotalMinutes), s.TotalHours)
	ctx.Printf("  Activities:      %d\n", s.TotalActivities)
	ctx.Printf("  Days tracked:    %d\n", s.TotalDays)
	ctx.Printf("  Average per day: %.1fh\n", s.AvgHoursRounded())

	ctx.Println("\nBy category:")
	for _, ct := range r.Categories {
		share := 0.0
		if s.TotalMinutes > 0 {
			share = float64(ct.Minutes) * 100 / float64(s.TotalMinutes)
		}
		ctx.Printf("  %-9s %6.1fh  %-*s %5.1f%%\n",
			ct.Label, ct.Hours, barWidth, bar(ct.Minutes, s.TotalMinutes), share)
	}

	ctx.Printf("\nLast %d days:\n", constants.TrendWindowDays)
	peak := 0
	for _, p := range r.Trend {
		if p.Minutes > peak {
			peak = p.Minutes
		}
	}
	for _, p := range r.Trend {
		ctx.Printf("  %s %-6s %5.1fh  %s\n", p.DayLabel, p.FullLabel, p.Hours, bar(p.Minutes, peak))
	}

	best := r.MostProductiveDay
	ctx.Println("\nMost productive day:")
	ctx.Printf("  %s (%s): %s across %d activities\n",
		utils.FormatDayLabel(best.Date, constants.LongDayFormat), best.Date,
		utils.FormatMinutes(best.TotalMinutes), len(best.Activities))
}

// bar renders value as a share of max, barWidth cells wide.
func bar(value, max int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	n := value * barWidth / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
