// Package ledger owns the day-keyed activity state, enforces the per-day
// minute budget and writes every change through to storage.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/timeflow/internal/constants"
	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/utils"
)

// Store is the persistence the ledger needs. storage.Provider satisfies it.
type Store interface {
	Load() (models.DayMap, error)
	Save(models.DayMap) error
}

// Quarantiner is implemented by stores that can move undecodable data aside
// so that a later Save cannot overwrite it. It returns where the data went.
type Quarantiner interface {
	Quarantine() (string, error)
}

// Ledger is the single in-memory source of truth for one session. It is not
// safe for concurrent use.
type Ledger struct {
	store Store
	days  models.DayMap
	day   string

	// loadErr is set when the persisted state could not be read or moved
	// aside; every write is refused while it is set.
	loadErr error

	now   func() time.Time
	newID func() string
}

type Option func(*Ledger)

// WithClock replaces time.Now for CreatedAt and the initial day.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// Open loads the persisted state once. Absent state starts the ledger empty.
// Undecodable state is moved aside by the store and the ledger starts empty.
// When the state can be neither read nor moved aside the ledger still opens
// empty, but refuses writes and reports the cause through LoadErr. The cursor
// starts on today.
func Open(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}

	days, err := store.Load()
	if err != nil {
		l.loadErr = recoverLoad(store, err)
		days = nil
	}
	if days == nil {
		days = models.DayMap{}
	}
	l.days = pruneEmpty(days)
	l.day = utils.DayKey(l.now())
	return l
}

func recoverLoad(store Store, loadErr error) error {
	if !errors.Is(loadErr, apperrors.ErrStorageDecode) {
		logger.Error("Failed to read activity data, writes disabled", "error", loadErr)
		return fmt.Errorf("failed to read activities: %w", loadErr)
	}
	q, ok := store.(Quarantiner)
	if !ok {
		logger.Error("Unreadable activity data cannot be moved aside, writes disabled", "error", loadErr)
		return loadErr
	}
	dest, err := q.Quarantine()
	if err != nil {
		logger.Error("Failed to move unreadable activity data aside, writes disabled", "error", err)
		return fmt.Errorf("%w (moving it aside failed: %v)", loadErr, err)
	}
	logger.Warn("Discarding unreadable activity data, starting empty", "error", loadErr, "moved_to", dest)
	return nil
}

// LoadErr reports why the persisted state could not be loaded or preserved.
// A non-nil result means the ledger is read-only for this session.
func (l *Ledger) LoadErr() error {
	return l.loadErr
}

func pruneEmpty(days models.DayMap) models.DayMap {
	for day, activities := range days {
		if len(activities) == 0 {
			delete(days, day)
		}
	}
	return days
}

// SelectDate points the cursor at t's calendar day.
func (l *Ledger) SelectDate(t time.Time) {
	l.day = utils.DayKey(t)
}

// SelectDay points the cursor at a day-key. Only malformed keys are rejected.
func (l *Ledger) SelectDay(key string) error {
	if !utils.IsDayKey(key) {
		return fmt.Errorf("invalid day %q (expected YYYY-MM-DD)", key)
	}
	l.day = key
	return nil
}

// Day returns the selected day-key.
func (l *Ledger) Day() string {
	return l.day
}

// Activities returns a copy of the selected day's activities in insertion order.
func (l *Ledger) Activities() []models.Activity {
	src := l.days[l.day]
	out := make([]models.Activity, len(src))
	copy(out, src)
	return out
}

func (l *Ledger) TotalMinutes() int {
	return models.SumMinutes(l.days[l.day])
}

func (l *Ledger) RemainingMinutes() int {
	return constants.MaxMinutesPerDay - l.TotalMinutes()
}

// DayData returns the read-only view of the selected day.
func (l *Ledger) DayData() models.DayData {
	activities := l.Activities()
	return models.DayData{
		Date:         l.day,
		Activities:   activities,
		TotalMinutes: models.SumMinutes(activities),
	}
}

// MaxMinutesFor returns the largest duration the activity id could be given
// on the selected day; for an unknown or empty id, the remaining budget.
func (l *Ledger) MaxMinutesFor(id string) int {
	max := l.RemainingMinutes()
	if id == "" {
		return max
	}
	if i := indexOf(l.days[l.day], id); i >= 0 {
		max += l.days[l.day][i].Minutes
	}
	return max
}

// Add appends a new activity to the selected day.
func (l *Ledger) Add(input models.NewActivity) (models.Activity, error) {
	if err := input.Validate(); err != nil {
		return models.Activity{}, err
	}

	remaining := l.RemainingMinutes()
	if input.Minutes > remaining {
		return models.Activity{}, &apperrors.CapacityError{
			Day:       l.day,
			Requested: input.Minutes,
			Remaining: remaining,
			Available: remaining,
		}
	}

	activity := models.Activity{
		ID:        l.newID(),
		Name:      strings.TrimSpace(input.Name),
		Category:  normalizeCategory(input.Category),
		Minutes:   input.Minutes,
		CreatedAt: l.now(),
	}

	next := l.days.Clone()
	next[l.day] = append(next[l.day], activity)
	if err := l.commit(next); err != nil {
		return models.Activity{}, err
	}

	logger.Debug("Added activity", "day", l.day, "id", activity.ID, "minutes", activity.Minutes)
	return activity, nil
}

// Update merges patch into the activity id on the selected day, in place.
// The capacity check substitutes the new minutes for the old ones.
func (l *Ledger) Update(id string, patch models.ActivityPatch) (models.Activity, error) {
	bucket := l.days[l.day]
	i := indexOf(bucket, id)
	if i < 0 {
		return models.Activity{}, fmt.Errorf("%w: %s on %s", apperrors.ErrNotFound, id, l.day)
	}
	if err := patch.Validate(); err != nil {
		return models.Activity{}, err
	}

	current := bucket[i]
	if patch.Minutes != nil {
		others := models.SumMinutes(bucket) - current.Minutes
		if others+*patch.Minutes > constants.MaxMinutesPerDay {
			return models.Activity{}, &apperrors.CapacityError{
				Day:       l.day,
				Requested: *patch.Minutes,
				Remaining: constants.MaxMinutesPerDay - models.SumMinutes(bucket),
				Available: constants.MaxMinutesPerDay - others,
			}
		}
	}

	updated := patch.Apply(current)
	if patch.Category != nil {
		updated.Category = normalizeCategory(updated.Category)
	}

	next := l.days.Clone()
	next[l.day][i] = updated
	if err := l.commit(next); err != nil {
		return models.Activity{}, err
	}

	logger.Debug("Updated activity", "day", l.day, "id", id)
	return updated, nil
}

// Remove deletes the activity id from the selected day. Unknown ids are a
// no-op, but the state is persisted either way. Only storage failures are
// returned.
func (l *Ledger) Remove(id string) error {
	next := l.days.Clone()
	bucket := next[l.day]
	if i := indexOf(bucket, id); i >= 0 {
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(next, l.day)
		} else {
			next[l.day] = bucket
		}
		logger.Debug("Removed activity", "day", l.day, "id", id)
	}
	return l.commit(next)
}

// AllDays returns one view per stored day, most recent first.
func (l *Ledger) AllDays() []models.DayData {
	return l.days.Days()
}

func (l *Ledger) HasAnyData() bool {
	return len(l.days) > 0
}

// Snapshot returns a deep copy of the whole state.
func (l *Ledger) Snapshot() models.DayMap {
	return l.days.Clone()
}

// Find locates an activity by id across all days.
func (l *Ledger) Find(id string) (string, models.Activity, bool) {
	for _, day := range l.days.Keys() {
		if i := indexOf(l.days[day], id); i >= 0 {
			return day, l.days[day][i], true
		}
	}
	return "", models.Activity{}, false
}

// commit persists next and only then makes it the live state.
func (l *Ledger) commit(next models.DayMap) error {
	if l.loadErr != nil {
		return fmt.Errorf("refusing to overwrite unreadable storage: %w", l.loadErr)
	}
	if err := l.store.Save(next); err != nil {
		logger.Error("Failed to persist activities", "day", l.day, "error", err)
		return fmt.Errorf("failed to save activities: %w", err)
	}
	l.days = next
	return nil
}

func indexOf(activities []models.Activity, id string) int {
	for i, a := range activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func normalizeCategory(category string) string {
	c := strings.TrimSpace(category)
	if c == "" {
		return constants.FallbackCategory
	}
	return c
}
