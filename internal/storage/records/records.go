// Package records defines the serialized form of the ledger state shared by
// every storage backend.
package records

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

// TimestampFormat is the on-disk form of CreatedAt.
const TimestampFormat = time.RFC3339Nano

// ActivityRecord is one stored activity.
type ActivityRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Minutes   int    `json:"minutes"`
	CreatedAt string `json:"createdAt"`
}

// Snapshot is the whole ledger state keyed by day.
type Snapshot map[string][]ActivityRecord

// FormatTimestamp renders t in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp accepts any RFC 3339 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid createdAt %q", apperrors.ErrStorageDecode, s)
	}
	return t, nil
}

func FromActivity(a models.Activity) ActivityRecord {
	return ActivityRecord{
		ID:        a.ID,
		Name:      a.Name,
		Category:  a.Category,
		Minutes:   a.Minutes,
		CreatedAt: FormatTimestamp(a.CreatedAt),
	}
}

// ToActivity converts a record back, rejecting data the ledger could not hold.
func (r ActivityRecord) ToActivity() (models.Activity, error) {
	if r.ID == "" {
		return models.Activity{}, fmt.Errorf("%w: activity without id", apperrors.ErrStorageDecode)
	}
	if r.Minutes <= 0 {
		return models.Activity{}, fmt.Errorf("%w: activity %s has %d minutes", apperrors.ErrStorageDecode, r.ID, r.Minutes)
	}
	created, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return models.Activity{}, err
	}
	return models.Activity{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Minutes:   r.Minutes,
		CreatedAt: created,
	}, nil
}

// FromDays converts the in-memory state. Empty days are dropped.
func FromDays(days models.DayMap) Snapshot {
	snap := make(Snapshot, len(days))
	for day, activities := range days {
		if len(activities) == 0 {
			continue
		}
		recs := make([]ActivityRecord, len(activities))
		for i, a := range activities {
			recs[i] = FromActivity(a)
		}
		snap[day] = recs
	}
	return snap
}

// ToDays converts a snapshot back. Any malformed key or record fails the
// whole conversion with ErrStorageDecode.
func (s Snapshot) ToDays() (models.DayMap, error) {
	days := make(models.DayMap, len(s))
	for day, recs := range s {
		if !utils.IsDayKey(day) {
			return nil, fmt.Errorf("%w: invalid day key %q", apperrors.ErrStorageDecode, day)
		}
		if len(recs) == 0 {
			continue
		}
		activities := make([]models.Activity, len(recs))
		for i, r := range recs {
			a, err := r.ToActivity()
			if err != nil {
				return nil, fmt.Errorf("day %s: %w", day, err)
			}
			activities[i] = a
		}
		days[day] = activities
	}
	return days, nil
}

// Encode serializes the state as an indented JSON object of day-key to records.
func Encode(days models.DayMap) ([]byte, error) {
	data, err := json.MarshalIndent(FromDays(days), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize activities: %w", err)
	}
	return data, nil
}

// Decode parses the output of Encode.
func Decode(data []byte) (models.DayMap, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageDecode, err)
	}
	return snap.ToDays()
}
