package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/timeflow/internal/constants"
)

// DayKey formats t as a day-key (YYYY-MM-DD) in t's own location.
func DayKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDayKey parses a day-key into local midnight of that date.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", key, err)
	}
	return t, nil
}

// IsDayKey reports whether key is a zero-padded, valid calendar date.
func IsDayKey(key string) bool {
	if len(key) != len(constants.DateFormat) {
		return false
	}
	t, err := time.Parse(constants.DateFormat, key)
	return err == nil && t.Format(constants.DateFormat) == key
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays shifts a calendar date by n days. DST-safe because it works on
// the date fields rather than on durations.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// ShiftDayKey moves a day-key by n calendar days.
func ShiftDayKey(key string, n int) (string, error) {
	t, err := ParseDayKey(key)
	if err != nil {
		return "", err
	}
	return DayKey(AddDays(t, n)), nil
}

// LastNDays returns the n calendar days ending at now (inclusive), oldest first.
func LastNDays(now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = AddDays(now, i-(n-1))
	}
	return days
}

// ResolveDate turns user input into a day-key relative to now.
// Accepts "", "today", "yesterday", "tomorrow" or YYYY-MM-DD.
func ResolveDate(input string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "today":
		return DayKey(now), nil
	case "yesterday":
		return DayKey(AddDays(now, -1)), nil
	case "tomorrow":
		return DayKey(AddDays(now, 1)), nil
	}
	key := strings.TrimSpace(input)
	if !IsDayKey(key) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today, yesterday or tomorrow)", input)
	}
	return key, nil
}

// FormatDayLabel renders a day-key with layout, falling back to the key itself.
func FormatDayLabel(key, layout string) string {
	t, err := ParseDayKey(key)
	if err != nil {
		return key
	}
	return t.Format(layout)
}
