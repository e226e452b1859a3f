package constants

const (
	// MaxMinutesPerDay is the hard ceiling on the minutes logged against one day.
	MaxMinutesPerDay = 1440

	// TrendWindowDays is the number of calendar days in the recent-day trend, today inclusive.
	TrendWindowDays = 7

	// Progress thresholds as a percentage of MaxMinutesPerDay.
	WarningPercent  = 70
	CriticalPercent = 90

	// DefaultCategory is preselected in the add form.
	DefaultCategory = "work"

	// FallbackCategory is used for activities stored without a category.
	FallbackCategory = "other"
)
