// Package tui is the interactive day view and analytics dashboard.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/timeflow/internal/ledger"
	"github.com/julianstephens/timeflow/internal/notifier"
	"github.com/julianstephens/timeflow/internal/tui/components/daylog"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateAnalytics
	StateForm
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

type Model struct {
	ledger   *ledger.Ledger
	notifier *notifier.Notifier
	now      func() time.Time

	state    SessionState
	keys     KeyMap
	help     help.Model
	dayLog   daylog.Model
	progress progress.Model

	form         *huh.Form
	activityForm *ActivityFormModel
	editingID    string // "" when the form adds
	deleteID     string

	status   string
	errMsg   string
	quitting bool
	width    int
	height   int
}

func NewModel(l *ledger.Ledger, n *notifier.Notifier, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	m := Model{
		ledger:   l,
		notifier: n,
		now:      now,
		state:    StateDay,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		dayLog:   daylog.New(60, 10),
		progress: progress.New(progress.WithDefaultGradient()),
	}
	m.refresh()
	return m
}

// refresh reloads the day log from the ledger.
func (m *Model) refresh() {
	m.dayLog.SetActivities(m.ledger.Activities())
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateDay {
		keys = append(keys, m.keys.PrevDay, m.keys.NextDay, m.keys.Add, m.keys.Edit, m.keys.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	if m.state != StateDay {
		return [][]key.Binding{global}
	}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.PrevDay, m.keys.NextDay, m.keys.Today}
	actions := []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// State returns the current view.
func (m Model) State() SessionState {
	return m.state
}
