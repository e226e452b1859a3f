package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(msg.Width-12, 10)
		m.dayLog.SetSize(msg.Width-4, max(msg.Height-12, 3))
		return m, nil
	}

	switch m.state {
	case StateForm:
		return m, m.updateForm(msg)
	case StateConfirmDelete:
		m.updateConfirmDelete(msg)
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Tab):
		m.state = (m.state + 1) % tabCount
		return m, nil
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.state = (m.state - 1 + tabCount) % tabCount
		return m, nil
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.state == StateDay {
		return m, m.updateDay(keyMsg)
	}
	return m, nil
}

func (m *Model) updateDay(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.PrevDay):
		m.shiftDay(-1)
	case key.Matches(msg, m.keys.NextDay):
		m.shiftDay(1)
	case key.Matches(msg, m.keys.Today):
		m.ledger.SelectDate(m.now())
		m.status, m.errMsg = "", ""
		m.refresh()
	case key.Matches(msg, m.keys.Add):
		return m.openForm(newActivityForm(), "", "Add activity", m.ledger.MaxMinutesFor(""))
	case key.Matches(msg, m.keys.Edit):
		a, ok := m.dayLog.Selected()
		if !ok {
			return nil
		}
		return m.openForm(editActivityForm(a), a.ID, "Edit activity", m.ledger.MaxMinutesFor(a.ID))
	case key.Matches(msg, m.keys.Delete):
		if a, ok := m.dayLog.Selected(); ok {
			m.deleteID = a.ID
			m.state = StateConfirmDelete
		}
	default:
		var cmd tea.Cmd
		m.dayLog, cmd = m.dayLog.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) shiftDay(n int) {
	next, err := utils.ShiftDayKey(m.ledger.Day(), n)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if err := m.ledger.SelectDay(next); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.status, m.errMsg = "", ""
	m.refresh()
}

func (m *Model) openForm(fm *ActivityFormModel, id, title string, maxMinutes int) tea.Cmd {
	if id == "" && maxMinutes <= 0 {
		m.errMsg = "This day is full. No time remaining."
		return nil
	}
	m.activityForm = fm
	m.editingID = id
	m.form = NewActivityForm(fm, title, maxMinutes)
	m.status, m.errMsg = "", ""
	m.state = StateForm
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.activityForm = nil
	m.editingID = ""
	m.state = StateDay
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.errMsg = ""
		m.closeForm()
		return nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveForm(); err != nil {
			logger.Warn("Failed to save activity", "error", err)
			m.errMsg = err.Error()
			m.form.State = huh.StateNormal
			return cmd
		}
		m.errMsg = ""
		m.closeForm()
		m.refresh()
	case huh.StateAborted:
		m.closeForm()
	}
	return cmd
}

// saveForm writes the form to the ledger and raises a progress alert when
// the day crosses a threshold.
func (m *Model) saveForm() error {
	fm := m.activityForm
	minutes, err := fm.TotalMinutes(m.ledger.MaxMinutesFor(m.editingID))
	if err != nil {
		return err
	}

	before := m.ledger.TotalMinutes()
	name := strings.TrimSpace(fm.Name)
	if m.editingID == "" {
		a, err := m.ledger.Add(models.NewActivity{Name: name, Category: fm.Category, Minutes: minutes})
		if err != nil {
			return describeSaveError(err)
		}
		m.status = fmt.Sprintf("Added %s (%s)", a.Name, utils.FormatMinutes(a.Minutes))
	} else {
		a, err := m.ledger.Update(m.editingID, models.ActivityPatch{Name: &name, Category: &fm.Category, Minutes: &minutes})
		if err != nil {
			return describeSaveError(err)
		}
		m.status = fmt.Sprintf("Updated %s", a.Name)
	}
	m.notifier.ProgressChanged(m.ledger.Day(), before, m.ledger.TotalMinutes())
	return nil
}

func describeSaveError(err error) error {
	if capErr, ok := apperrors.AsCapacity(err); ok {
		return fmt.Errorf("Maximum %s available", utils.FormatMinutes(capErr.Available))
	}
	return err
}

func (m *Model) updateConfirmDelete(msg tea.Msg) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return
	}
	switch keyMsg.String() {
	case "y", "Y":
		if m.deleteID != "" {
			if err := m.ledger.Remove(m.deleteID); err != nil {
				m.errMsg = err.Error()
			} else {
				m.status = "Activity deleted"
				m.refresh()
			}
		}
		m.deleteID = ""
		m.state = StateDay
	case "n", "N", "esc":
		m.deleteID = ""
		m.state = StateDay
	}
}
