package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a duration into whole minutes.
//
// Accepted forms: plain minutes ("90"), hours and minutes ("1:30"), and Go
// style durations limited to hours and minutes ("1h30m", "2h", "45m").
func ParseDuration(input string) (int, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return 0, fmt.Errorf("duration is empty")
	}

	var minutes int
	switch {
	case isDigits(s):
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", input, err)
		}
		minutes = n
	case strings.Contains(s, ":"):
		parts := strings.SplitN(s, ":", 2)
		if !isDigits(parts[0]) || !isDigits(parts[1]) || len(parts[1]) > 2 {
			return 0, fmt.Errorf("invalid duration %q (expected H:MM)", input)
		}
		h, err := strconv.Atoi(parts[0])
		if err != nil || h > (math.MaxInt-59)/60 {
			return 0, fmt.Errorf("invalid duration %q: hours out of range", input)
		}
		m, _ := strconv.Atoi(parts[1])
		if m >= 60 {
			return 0, fmt.Errorf("invalid duration %q: minutes must be below 60", input)
		}
		minutes = h*60 + m
	default:
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q (examples: 90, 1:30, 1h30m)", input)
		}
		if d%time.Minute != 0 {
			return 0, fmt.Errorf("invalid duration %q: must be whole minutes", input)
		}
		minutes = int(d / time.Minute)
	}

	if minutes <= 0 {
		return 0, fmt.Errorf("duration must be greater than zero")
	}
	return minutes, nil
}

// HoursMinutes splits minutes into whole hours and the remainder.
func HoursMinutes(minutes int) (int, int) {
	return minutes / 60, minutes % 60
}

// FormatMinutes renders minutes as "Xh Ym". Negative input is clamped to zero.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := HoursMinutes(minutes)
	return fmt.Sprintf("%dh %dm", h, m)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
