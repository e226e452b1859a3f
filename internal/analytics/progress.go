package analytics

import (
	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

// Level grades how much of the daily budget is used.
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Progress is the day-budget gauge.
type Progress struct {
	TotalMinutes     int     `json:"totalMinutes"`
	Percent          float64 `json:"percent"`
	RemainingMinutes int     `json:"remainingMinutes"`
	Remaining        string  `json:"remaining"` // "Xh Ym"
	TrackedHours     float64 `json:"trackedHours"`
	Level            Level   `json:"level"`
}

// DayProgress grades a day total against MaxMinutesPerDay.
func DayProgress(totalMinutes int) Progress {
	remaining := constants.MaxMinutesPerDay - totalMinutes
	if remaining < 0 {
		remaining = 0
	}
	percent := float64(totalMinutes*100) / constants.MaxMinutesPerDay

	level := LevelNormal
	switch {
	case percent >= constants.CriticalPercent:
		level = LevelCritical
	case percent >= constants.WarningPercent:
		level = LevelWarning
	}

	return Progress{
		TotalMinutes:     totalMinutes,
		Percent:          percent,
		RemainingMinutes: remaining,
		Remaining:        utils.FormatMinutes(remaining),
		TrackedHours:     models.MinutesToHours(totalMinutes),
		Level:            level,
	}
}
