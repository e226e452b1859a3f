// Package analytics derives cross-day statistics from a snapshot of day
// data. Everything here is pure: no I/O and no mutation of the input.
package analytics

import (
	"errors"
	"sort"
	"time"

	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

// ErrNoData is returned by Compute for an empty snapshot. Callers branch on
// it instead of rendering zeroed statistics.
var ErrNoData = errors.New("no activity data")

// CategoryTotal is the time spent in one category across all days.
type CategoryTotal struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Minutes  int     `json:"minutes"`
	Hours    float64 `json:"hours"`
}

// TrendPoint is one calendar day of the recent-day trend.
type TrendPoint struct {
	Date      string  `json:"date"`
	DayLabel  string  `json:"dayLabel"`  // "Mon"
	FullLabel string  `json:"fullLabel"` // "Jan 2"
	Minutes   int     `json:"minutes"`
	Hours     float64 `json:"hours"`
}

type Summary struct {
	TotalMinutes    int     `json:"totalMinutes"`
	TotalHours      float64 `json:"totalHours"`
	TotalActivities int     `json:"totalActivities"`
	TotalDays       int     `json:"totalDays"`
	// AvgHoursPerDay is unrounded; use AvgHoursRounded for display.
	AvgHoursPerDay float64 `json:"avgHoursPerDay"`
}

// AvgHoursRounded is AvgHoursPerDay rounded to one decimal.
func (s Summary) AvgHoursRounded() float64 {
	return models.Round1(s.AvgHoursPerDay)
}

// Report bundles every statistic shown on the analytics view.
type Report struct {
	Summary           Summary         `json:"summary"`
	Categories        []CategoryTotal `json:"categories"`
	Trend             []TrendPoint    `json:"trend"`
	MostProductiveDay models.DayData  `json:"mostProductiveDay"`
}

// Compute builds the full report. days is expected in the order produced by
// the ledger (most recent first), which decides ties for the most
// productive day.
func Compute(days []models.DayData, now time.Time) (Report, error) {
	if len(days) == 0 {
		return Report{}, ErrNoData
	}
	best, _ := MostProductiveDay(days)
	return Report{
		Summary:           Summarize(days),
		Categories:        CategoryTotals(days),
		Trend:             Trend(days, now),
		MostProductiveDay: best,
	}, nil
}

// CategoryTotals groups all activities by category, largest first. Ties are
// ordered by category id.
func CategoryTotals(days []models.DayData) []CategoryTotal {
	minutes := make(map[string]int)
	for _, d := range days {
		for _, a := range d.Activities {
			minutes[a.Category] += a.Minutes
		}
	}

	totals := make([]CategoryTotal, 0, len(minutes))
	for id, m := range minutes {
		c := models.LookupCategory(id)
		totals = append(totals, CategoryTotal{
			Category: id,
			Label:    c.Label,
			Color:    c.Color,
			Minutes:  m,
			Hours:    models.MinutesToHours(m),
		})
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Minutes != totals[j].Minutes {
			return totals[i].Minutes > totals[j].Minutes
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// Trend returns one point per calendar day for the window ending on now's
// date, oldest first. Days missing from the input count as zero.
func Trend(days []models.DayData, now time.Time) []TrendPoint {
	byDate := make(map[string]int, len(days))
	for _, d := range days {
		byDate[d.Date] += models.SumMinutes(d.Activities)
	}

	window := utils.LastNDays(now, constants.TrendWindowDays)
	points := make([]TrendPoint, len(window))
	for i, t := range window {
		key := utils.DayKey(t)
		m := byDate[key]
		points[i] = TrendPoint{
			Date:      key,
			DayLabel:  t.Format(constants.ShortDayFormat),
			FullLabel: t.Format(constants.MonthDayFormat),
			Minutes:   m,
			Hours:     models.MinutesToHours(m),
		}
	}
	return points
}

// MostProductiveDay returns the day with the most minutes; the first one in
// input order wins a tie.
func MostProductiveDay(days []models.DayData) (models.DayData, bool) {
	if len(days) == 0 {
		return models.DayData{}, false
	}
	best := days[0]
	bestMinutes := models.SumMinutes(best.Activities)
	for _, d := range days[1:] {
		if m := models.SumMinutes(d.Activities); m > bestMinutes {
			best, bestMinutes = d, m
		}
	}
	best.TotalMinutes = bestMinutes
	return best, true
}

// Summarize computes totals and the per-day average over the days present.
func Summarize(days []models.DayData) Summary {
	var s Summary
	for _, d := range days {
		s.TotalMinutes += models.SumMinutes(d.Activities)
		s.TotalActivities += len(d.Activities)
	}
	s.TotalDays = len(days)
	s.TotalHours = models.MinutesToHours(s.TotalMinutes)
	if s.TotalDays > 0 {
		s.AvgHoursPerDay = float64(s.TotalMinutes) / float64(s.TotalDays) / 60
	}
	return s
}
