// Package dashboard renders the analytics report.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timeflow/internal/analytics"
	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/utils"
)

const barWidth = 30

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2).
			MarginRight(1)

	cardValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	trendBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4F46E5"))
)

// Empty is shown instead of the report when nothing has been logged.
func Empty() string {
	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			sectionStyle.Render(constants.EmptyAnalyticsTitle),
			mutedStyle.Render(constants.EmptyAnalyticsText),
		),
	)
}

// Render draws the summary cards, category breakdown, trend and most
// productive day.
func Render(r analytics.Report) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		summaryCards(r.Summary),
		sectionStyle.Render("Time by category"),
		categories(r.Categories, r.Summary.TotalMinutes),
		sectionStyle.Render(fmt.Sprintf("Last %d days", constants.TrendWindowDays)),
		trend(r.Trend),
		sectionStyle.Render("Most productive day"),
		fmt.Sprintf("%s  %s across %d activities",
			utils.FormatDayLabel(r.MostProductiveDay.Date, constants.LongDayFormat),
			utils.FormatMinutes(r.MostProductiveDay.TotalMinutes),
			len(r.MostProductiveDay.Activities)),
	)
}

func card(value, label string) string {
	return cardStyle.Render(cardValueStyle.Render(value) + "\n" + cardLabelStyle.Render(label))
}

func summaryCards(s analytics.Summary) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprintf("%.1fh", s.TotalHours), "Total time"),
		card(fmt.Sprintf("%d", s.TotalActivities), "Activities"),
		card(fmt.Sprintf("%d", s.TotalDays), "Days tracked"),
		card(fmt.Sprintf("%.1fh", s.AvgHoursRounded()), "Avg per day"),
	)
}

func categories(totals []analytics.CategoryTotal, total int) string {
	var b strings.Builder
	for _, ct := range totals {
		share := 0.0
		if total > 0 {
			share = float64(ct.Minutes) * 100 / float64(total)
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(ct.Color)).Render(Bar(ct.Minutes, total, barWidth))
		fmt.Fprintf(&b, "%-9s %-*s %6.1fh %5.1f%%\n", ct.Label, barWidth, bar, ct.Hours, share)
	}
	return strings.TrimRight(b.String(), "\n")
}

func trend(points []analytics.TrendPoint) string {
	peak := 0
	for _, p := range points {
		peak = max(peak, p.Minutes)
	}
	var b strings.Builder
	for _, p := range points {
		fmt.Fprintf(&b, "%s %-6s %s %.1fh\n", p.DayLabel, p.FullLabel,
			trendBarStyle.Render(Bar(p.Minutes, peak, barWidth)), p.Hours)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Bar draws value/max as a bar of up to width cells. Any non-zero value gets
// at least one cell.
func Bar(value, max, width int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	n := value * width / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
