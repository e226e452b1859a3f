package models

import "math"

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MinutesToHours converts minutes to hours rounded to one decimal.
func MinutesToHours(minutes int) float64 {
	return Round1(float64(minutes) / 60)
}
