package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDayKey      ConflictType = "invalid_day_key"
	ConflictOverCapacity       ConflictType = "over_capacity"
	ConflictNonPositiveMinutes ConflictType = "non_positive_minutes"
	ConflictEmptyName          ConflictType = "empty_name"
	ConflictDuplicateID        ConflictType = "duplicate_id"
	ConflictUnknownCategory    ConflictType = "unknown_category"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Conflict represents one problem found in stored activity data
type Conflict struct {
	Type        ConflictType
	Severity    Severity
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	ActivityIDs []string // IDs of activities involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts, warnings included
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasErrors reports whether any conflict is more than a warning.
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-level conflicts.
func (vr *ValidationResult) Errors() []Conflict {
	var out []Conflict
	for _, c := range vr.Conflicts {
		if c.Severity == SeverityError {
			out = append(out, c)
		}
	}
	return out
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- [%s] %s\n", c.Severity, c.Description)
	}
	return b.String()
}

// Validator checks a snapshot for data the ledger would never produce
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateDays checks every day bucket. Conflicts are ordered by day, then
// by the order checks run.
func (v *Validator) ValidateDays(days models.DayMap) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	keys := make([]string, 0, len(days))
	for day := range days {
		keys = append(keys, day)
	}
	sort.Strings(keys)

	firstSeen := make(map[string]string) // id -> day
	for _, day := range keys {
		activities := days[day]

		if !utils.IsDayKey(day) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDayKey,
				Severity:    SeverityError,
				Description: fmt.Sprintf("Day key %q is not a YYYY-MM-DD date", day),
				Date:        day,
			})
		}

		if total := models.SumMinutes(activities); total > constants.MaxMinutesPerDay {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOverCapacity,
				Severity:    SeverityError,
				Description: fmt.Sprintf("%s has %d minutes logged (limit %d)", day, total, constants.MaxMinutesPerDay),
				Date:        day,
				ActivityIDs: ids(activities),
			})
		}

		for _, a := range activities {
			if a.Minutes <= 0 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictNonPositiveMinutes,
					Severity:    SeverityError,
					Description: fmt.Sprintf("Activity %q on %s has %d minutes", a.Name, day, a.Minutes),
					Date:        day,
					ActivityIDs: []string{a.ID},
				})
			}
			if strings.TrimSpace(a.Name) == "" {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictEmptyName,
					Severity:    SeverityError,
					Description: fmt.Sprintf("Activity %s on %s has no name", a.ID, day),
					Date:        day,
					ActivityIDs: []string{a.ID},
				})
			}
			if prev, ok := firstSeen[a.ID]; ok {
				where := "the same day"
				if prev != day {
					where = prev
				}
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictDuplicateID,
					Severity:    SeverityError,
					Description: fmt.Sprintf("Activity id %s on %s is already used on %s", a.ID, day, where),
					Date:        day,
					ActivityIDs: []string{a.ID},
				})
			} else {
				firstSeen[a.ID] = day
			}
			if !models.IsKnownCategory(a.Category) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictUnknownCategory,
					Severity:    SeverityWarning,
					Description: fmt.Sprintf("Activity %q on %s uses unknown category %q (shown as Other)", a.Name, day, a.Category),
					Date:        day,
					ActivityIDs: []string{a.ID},
				})
			}
		}
	}

	return result
}

func ids(activities []models.Activity) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = a.ID
	}
	return out
}
