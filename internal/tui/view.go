package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timeflow/internal/analytics"
	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/tui/components/dashboard"
	"github.com/julianstephens/timeflow/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = m.viewDay()
	case StateAnalytics:
		content = m.viewAnalytics()
	case StateForm:
		content = docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.viewDateHeader(),
			"",
			m.form.View(),
			m.viewMessages(),
		))
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active > StateAnalytics {
		active = StateDay
	}
	var tabs []string
	for i, title := range []string{"Day", "Analytics"} {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewDateHeader() string {
	day := m.ledger.Day()
	label := utils.FormatDayLabel(day, constants.LongDayFormat)
	if day == utils.DayKey(m.now()) {
		label += " (today)"
	}
	return dateStyle.Render(label)
}

func (m Model) viewProgress() string {
	p := analytics.DayProgress(m.ledger.TotalMinutes())
	summary := fmt.Sprintf("%s tracked, %s remaining (%.1f%%)",
		utils.FormatMinutes(p.TotalMinutes), p.Remaining, p.Percent)
	switch p.Level {
	case analytics.LevelCritical:
		summary = dangerStyle.Render(summary)
	case analytics.LevelWarning:
		summary = warningStyle.Render(summary)
	default:
		summary = mutedStyle.Render(summary)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.progress.ViewAs(p.Percent/100), summary)
}

func (m Model) viewMessages() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render(m.errMsg)
	case m.status != "":
		return mutedStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewDay() string {
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.viewDateHeader(),
		m.viewProgress(),
		"",
		m.dayLog.View(),
		m.viewMessages(),
	))
}

func (m Model) viewAnalytics() string {
	report, err := analytics.Compute(m.ledger.AllDays(), m.now())
	if errors.Is(err, analytics.ErrNoData) {
		return docStyle.Render(dashboard.Empty())
	}
	if err != nil {
		return docStyle.Render(dangerStyle.Render(err.Error()))
	}
	return docStyle.Render(dashboard.Render(report))
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Are you sure you want to delete this activity?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
