package ledger

import (
	"github.com/julianstephens/timeflow/internal/constants"
	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/models"
)

// ImportResult counts what an import did.
type ImportResult struct {
	Added   int
	Skipped int // ids already present
	Days    int
}

// Import merges days into the ledger, or replaces the whole state when
// replace is set. Activities whose id already exists anywhere are skipped.
// Every touched day is re-checked against the daily budget, and the import
// is all-or-nothing.
func (l *Ledger) Import(days models.DayMap, replace bool) (ImportResult, error) {
	var result ImportResult

	next := models.DayMap{}
	if !replace {
		next = l.days.Clone()
	}

	seen := make(map[string]bool)
	for _, activities := range next {
		for _, a := range activities {
			seen[a.ID] = true
		}
	}

	for _, day := range days.Keys() {
		for _, a := range days[day] {
			if seen[a.ID] {
				result.Skipped++
				continue
			}
			seen[a.ID] = true
			next[day] = append(next[day], a)
			result.Added++
		}
	}

	for day, activities := range next {
		total := models.SumMinutes(activities)
		if total > constants.MaxMinutesPerDay {
			return ImportResult{}, &apperrors.CapacityError{
				Day:       day,
				Requested: total,
				Remaining: constants.MaxMinutesPerDay - models.SumMinutes(l.days[day]),
				Available: constants.MaxMinutesPerDay,
			}
		}
	}

	if err := l.commit(pruneEmpty(next)); err != nil {
		return ImportResult{}, err
	}
	result.Days = len(l.days)

	logger.Info("Imported activities", "added", result.Added, "skipped", result.Skipped, "replace", replace)
	return result, nil
}
