package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

const (
	maxFormHours   = 24
	maxFormMinutes = 59
)

// ActivityFormModel holds the add/edit form values as typed.
type ActivityFormModel struct {
	Name     string
	Category string
	Hours    string
	Minutes  string
}

// newActivityForm returns the add-form defaults.
func newActivityForm() *ActivityFormModel {
	return &ActivityFormModel{
		Category: constants.DefaultCategory,
		Hours:    "0",
		Minutes:  "30",
	}
}

// editActivityForm prefills the form from an existing activity.
func editActivityForm(a models.Activity) *ActivityFormModel {
	h, m := utils.HoursMinutes(a.Minutes)
	category := a.Category
	if !models.IsKnownCategory(category) {
		category = constants.FallbackCategory
	}
	return &ActivityFormModel{
		Name:     a.Name,
		Category: category,
		Hours:    strconv.Itoa(h),
		Minutes:  strconv.Itoa(m),
	}
}

func parseBounded(s, field string, limit int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	if n > limit {
		return 0, fmt.Errorf("%s must be at most %d", field, limit)
	}
	return n, nil
}

// TotalMinutes validates the duration fields against max, the most the
// activity may take on the selected day.
func (f *ActivityFormModel) TotalMinutes(max int) (int, error) {
	h, err := parseBounded(f.Hours, "hours", maxFormHours)
	if err != nil {
		return 0, err
	}
	m, err := parseBounded(f.Minutes, "minutes", maxFormMinutes)
	if err != nil {
		return 0, err
	}
	total := h*60 + m
	if total <= 0 {
		return 0, fmt.Errorf("duration must be greater than zero")
	}
	if total > max {
		mh, mm := utils.HoursMinutes(max)
		return 0, fmt.Errorf("Maximum %dh %dm available", mh, mm)
	}
	return total, nil
}

func categoryOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(models.Categories))
	for i, c := range models.Categories {
		opts[i] = huh.NewOption(c.Label, c.ID)
	}
	return opts
}

// NewActivityForm builds the huh form bound to fm. max caps the duration.
func NewActivityForm(fm *ActivityFormModel, title string, max int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("What did you do?").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOptions()...).
				Value(&fm.Category),
			huh.NewInput().
				Title("Hours").
				Value(&fm.Hours).
				Validate(func(s string) error {
					_, err := parseBounded(s, "hours", maxFormHours)
					return err
				}),
			huh.NewInput().
				Title("Minutes").
				Description(fmt.Sprintf("%s available", utils.FormatMinutes(max))).
				Value(&fm.Minutes).
				Validate(func(s string) error {
					// hours is bound to the same struct and already entered
					_, err := (&ActivityFormModel{Hours: fm.Hours, Minutes: s}).TotalMinutes(max)
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
