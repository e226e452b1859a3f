package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDayKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"2024-01-01", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-1-01", false},
		{"20240101", false},
		{"", false},
		{"2024-13-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDayKey(tt.key))
		})
	}
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 4, 0, 0, time.Local)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty is today", input: "", want: "2024-03-01"},
		{name: "today", input: "Today", want: "2024-03-01"},
		{name: "yesterday crosses month", input: "yesterday", want: "2024-02-29"},
		{name: "tomorrow", input: "tomorrow", want: "2024-03-02"},
		{name: "explicit", input: "2023-12-31", want: "2023-12-31"},
		{name: "garbage", input: "next week", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDate(tt.input, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2024, 1, 3, 23, 59, 0, 0, time.Local)
	days := LastNDays(now, 7)
	require.Len(t, days, 7)

	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = DayKey(d)
	}
	assert.Equal(t, []string{
		"2023-12-28", "2023-12-29", "2023-12-30", "2023-12-31",
		"2024-01-01", "2024-01-02", "2024-01-03",
	}, keys)
	assert.Nil(t, LastNDays(now, 0))
}

func TestShiftDayKey(t *testing.T) {
	got, err := ShiftDayKey("2024-12-31", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", got)

	got, err = ShiftDayKey("2024-03-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	_, err = ShiftDayKey("bogus", 1)
	assert.Error(t, err)
}

func TestFormatDayLabel(t *testing.T) {
	assert.Equal(t, "Mon", FormatDayLabel("2024-01-01", "Mon"))
	assert.Equal(t, "Jan 1", FormatDayLabel("2024-01-01", "Jan 2"))
	assert.Equal(t, "oops", FormatDayLabel("oops", "Mon"))
}
