package models

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/julianstephens/timeflow/internal/errors"
)

// Activity is a single block of time logged against a day.
type Activity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Minutes   int       `json:"minutes"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewActivity carries the caller-supplied fields of an activity to be added.
// ID and CreatedAt are assigned by the ledger.
type NewActivity struct {
	Name     string
	Category string
	Minutes  int
}

// Validate checks the fields the ledger re-checks regardless of what the UI did.
func (n NewActivity) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return apperrors.Invalid("name must not be empty")
	}
	if n.Minutes <= 0 {
		return apperrors.Invalid("minutes must be greater than zero (got %d)", n.Minutes)
	}
	return nil
}

// ActivityPatch is a partial update. Nil fields keep their current value.
type ActivityPatch struct {
	Name     *string
	Category *string
	Minutes  *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ActivityPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Minutes == nil
}

func (p ActivityPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperrors.Invalid("name must not be empty")
	}
	if p.Minutes != nil && *p.Minutes <= 0 {
		return apperrors.Invalid("minutes must be greater than zero (got %d)", *p.Minutes)
	}
	return nil
}

// Apply returns a copy of a with the patch merged in. ID and CreatedAt are never touched.
func (p ActivityPatch) Apply(a Activity) Activity {
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Minutes != nil {
		a.Minutes = *p.Minutes
	}
	return a
}

// DayData is the read-only view of one day bucket.
type DayData struct {
	Date         string     `json:"date"` // YYYY-MM-DD format
	Activities   []Activity `json:"activities"`
	TotalMinutes int        `json:"totalMinutes"`
}

// Hours returns the day total rounded to one decimal.
func (d DayData) Hours() float64 {
	return MinutesToHours(d.TotalMinutes)
}

// SumMinutes totals the minutes of the given activities.
func SumMinutes(activities []Activity) int {
	total := 0
	for _, a := range activities {
		total += a.Minutes
	}
	return total
}

// DayMap maps a day-key to the ordered activities logged that day.
type DayMap map[string][]Activity

// Clone returns a deep copy so callers can build a new state without
// touching the one currently in use.
func (d DayMap) Clone() DayMap {
	if d == nil {
		return DayMap{}
	}
	out := make(DayMap, len(d))
	for day, activities := range d {
		cp := make([]Activity, len(activities))
		copy(cp, activities)
		out[day] = cp
	}
	return out
}

// Keys returns the day-keys sorted most recent first.
func (d DayMap) Keys() []string {
	keys := make([]string, 0, len(d))
	for day := range d {
		keys = append(keys, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// Days returns one DayData per key, most recent first, totals computed fresh.
func (d DayMap) Days() []DayData {
	keys := d.Keys()
	days := make([]DayData, 0, len(keys))
	for _, day := range keys {
		activities := make([]Activity, len(d[day]))
		copy(activities, d[day])
		days = append(days, DayData{
			Date:         day,
			Activities:   activities,
			TotalMinutes: SumMinutes(activities),
		})
	}
	return days
}

// ActivityCount returns the number of activities across all days.
func (d DayMap) ActivityCount() int {
	n := 0
	for _, activities := range d {
		n += len(activities)
	}
	return n
}
