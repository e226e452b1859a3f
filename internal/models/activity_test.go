package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/timeflow/internal/errors"
)

func TestNewActivityValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   NewActivity
		wantErr bool
	}{
		{name: "valid", input: NewActivity{Name: "Deep work", Category: "work", Minutes: 90}},
		{name: "blank name", input: NewActivity{Name: "   ", Minutes: 30}, wantErr: true},
		{name: "zero minutes", input: NewActivity{Name: "Run", Minutes: 0}, wantErr: true},
		{name: "negative minutes", input: NewActivity{Name: "Run", Minutes: -5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrInvalidActivity))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestActivityPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	base := Activity{ID: "a1", Name: "Read", Category: "learning", Minutes: 45, CreatedAt: created}

	name := "  Read papers "
	minutes := 60
	got := ActivityPatch{Name: &name, Minutes: &minutes}.Apply(base)

	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, "Read papers", got.Name)
	assert.Equal(t, "learning", got.Category)
	assert.Equal(t, 60, got.Minutes)
	assert.True(t, created.Equal(got.CreatedAt))

	// original untouched
	assert.Equal(t, 45, base.Minutes)
	assert.True(t, ActivityPatch{}.IsEmpty())
}

func TestActivityPatchValidate(t *testing.T) {
	empty := ""
	zero := 0
	assert.Error(t, ActivityPatch{Name: &empty}.Validate())
	assert.Error(t, ActivityPatch{Minutes: &zero}.Validate())
	assert.NoError(t, ActivityPatch{}.Validate())
}

func TestDayMapDays(t *testing.T) {
	days := DayMap{
		"2024-01-01": {{ID: "a", Minutes: 120}, {ID: "b", Minutes: 60}},
		"2024-01-03": {{ID: "c", Minutes: 30}},
		"2024-01-02": {{ID: "d", Minutes: 90}},
	}

	out := days.Days()
	require.Len(t, out, 3)
	assert.Equal(t, "2024-01-03", out[0].Date)
	assert.Equal(t, "2024-01-02", out[1].Date)
	assert.Equal(t, "2024-01-01", out[2].Date)
	assert.Equal(t, 180, out[2].TotalMinutes)
	assert.Equal(t, 3.0, out[2].Hours())
	assert.Equal(t, 4, days.ActivityCount())
}

func TestDayMapCloneIsDeep(t *testing.T) {
	days := DayMap{"2024-01-01": {{ID: "a", Minutes: 10}}}
	cp := days.Clone()
	cp["2024-01-01"][0].Minutes = 99
	cp["2024-01-02"] = []Activity{{ID: "b"}}

	assert.Equal(t, 10, days["2024-01-01"][0].Minutes)
	assert.Len(t, days, 1)
	assert.NotNil(t, DayMap(nil).Clone())
}

func TestLookupCategory(t *testing.T) {
	c := LookupCategory("exercise")
	assert.Equal(t, "Exercise", c.Label)
	assert.Equal(t, "#16A34A", c.Color)

	unknown := LookupCategory("gardening")
	assert.Equal(t, "gardening", unknown.ID)
	assert.Equal(t, "Other", unknown.Label)
	assert.Equal(t, "#808080", unknown.Color)

	assert.True(t, IsKnownCategory("rest"))
	assert.False(t, IsKnownCategory("gardening"))
	assert.Equal(t, []string{"work", "exercise", "learning", "personal", "social", "rest", "other"}, CategoryIDs())
}

func TestMinutesToHours(t *testing.T) {
	tests := []struct {
		minutes int
		want    float64
	}{
		{0, 0},
		{60, 1},
		{90, 1.5},
		{210, 3.5},
		{100, 1.7},
		{3, 0.1},  // 0.05 rounds away from zero
		{1440, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinutesToHours(tt.minutes), "minutes=%d", tt.minutes)
	}
	assert.Equal(t, 2.3, Round1(2.25))
}
