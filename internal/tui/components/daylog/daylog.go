// Package daylog renders one day's activities as a selectable table.
package daylog

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

const (
	categoryWidth = 12
	durationWidth = 10
	minNameWidth  = 16
)

var emptyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")).
	Padding(1, 2)

type Model struct {
	table      table.Model
	activities []models.Activity
}

func New(width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)
	return Model{table: t}
}

func columns(width int) []table.Column {
	name := width - categoryWidth - durationWidth - 6
	if name < minNameWidth {
		name = minNameWidth
	}
	return []table.Column{
		{Title: "Activity", Width: name},
		{Title: "Category", Width: categoryWidth},
		{Title: "Duration", Width: durationWidth},
	}
}

// SetActivities replaces the rows, keeping the cursor in range.
func (m *Model) SetActivities(activities []models.Activity) {
	m.activities = activities
	rows := make([]table.Row, len(activities))
	for i, a := range activities {
		rows[i] = table.Row{a.Name, models.LookupCategory(a.Category).Label, utils.FormatMinutes(a.Minutes)}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) SetSize(width, height int) {
	m.table.SetColumns(columns(width))
	m.table.SetHeight(height)
}

// Selected returns the activity under the cursor.
func (m Model) Selected() (models.Activity, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.activities) {
		return models.Activity{}, false
	}
	return m.activities[c], true
}

func (m Model) Len() int {
	return len(m.activities)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.activities) == 0 {
		return emptyStyle.Render(constants.EmptyActivitiesTitle + "\n" + constants.EmptyActivitiesText + "\nPress 'a' to add one.")
	}
	return m.table.View()
}
