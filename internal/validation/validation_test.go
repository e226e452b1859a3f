package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/timeflow/internal/models"
)

func conflictTypes(result ValidationResult) []ConflictType {
	var out []ConflictType
	for _, c := range result.Conflicts {
		out = append(out, c.Type)
	}
	return out
}

func TestValidateDaysClean(t *testing.T) {
	result := New().ValidateDays(models.DayMap{
		"2024-01-01": {
			{ID: "a", Name: "Work", Category: "work", Minutes: 600},
			{ID: "b", Name: "Sleep", Category: "rest", Minutes: 840},
		},
	})
	assert.False(t, result.HasConflicts())
	assert.Equal(t, "No conflicts detected.", result.FormatReport())
}

func TestValidateDaysConflicts(t *testing.T) {
	tests := []struct {
		name     string
		days     models.DayMap
		expected []ConflictType
	}{
		{
			name:     "invalid day key",
			days:     models.DayMap{"2024/01/01": {{ID: "a", Name: "x", Category: "work", Minutes: 5}}},
			expected: []ConflictType{ConflictInvalidDayKey},
		},
		{
			name: "over capacity",
			days: models.DayMap{"2024-01-01": {
				{ID: "a", Name: "x", Category: "work", Minutes: 1000},
				{ID: "b", Name: "y", Category: "work", Minutes: 441},
			}},
			expected: []ConflictType{ConflictOverCapacity},
		},
		{
			name:     "non-positive minutes and empty name",
			days:     models.DayMap{"2024-01-01": {{ID: "a", Name: " ", Category: "work", Minutes: 0}}},
			expected: []ConflictType{ConflictNonPositiveMinutes, ConflictEmptyName},
		},
		{
			name: "duplicate id across days",
			days: models.DayMap{
				"2024-01-01": {{ID: "a", Name: "x", Category: "work", Minutes: 5}},
				"2024-01-02": {{ID: "a", Name: "y", Category: "work", Minutes: 5}},
			},
			expected: []ConflictType{ConflictDuplicateID},
		},
		{
			name: "duplicate id within a day",
			days: models.DayMap{"2024-01-01": {
				{ID: "a", Name: "x", Category: "work", Minutes: 5},
				{ID: "a", Name: "y", Category: "work", Minutes: 5},
			}},
			expected: []ConflictType{ConflictDuplicateID},
		},
		{
			name:     "unknown category",
			days:     models.DayMap{"2024-01-01": {{ID: "a", Name: "x", Category: "gardening", Minutes: 5}}},
			expected: []ConflictType{ConflictUnknownCategory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New().ValidateDays(tt.days)
			assert.Equal(t, tt.expected, conflictTypes(result))
		})
	}
}

func TestUnknownCategoryIsOnlyAWarning(t *testing.T) {
	result := New().ValidateDays(models.DayMap{
		"2024-01-01": {{ID: "a", Name: "x", Category: "gardening", Minutes: 5}},
	})
	require.True(t, result.HasConflicts())
	assert.False(t, result.HasErrors())
	assert.Empty(t, result.Errors())
	assert.Contains(t, result.FormatReport(), "[warning]")
}

func TestErrorsFiltersWarnings(t *testing.T) {
	result := New().ValidateDays(models.DayMap{
		"2024-01-01": {
			{ID: "a", Name: "x", Category: "gardening", Minutes: 5},
			{ID: "b", Name: "", Category: "work", Minutes: 5},
		},
	})
	require.True(t, result.HasErrors())
	errs := result.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ConflictEmptyName, errs[0].Type)
	assert.Equal(t, []string{"b"}, errs[0].ActivityIDs)
}
