package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded matches any *CapacityError.
	ErrCapacityExceeded = errors.New("daily capacity exceeded")
	// ErrNotFound is returned when an activity id is not in the selected day.
	ErrNotFound = errors.New("activity not found")
	// ErrInvalidActivity is returned for an empty name or a non-positive duration.
	ErrInvalidActivity = errors.New("invalid activity")
	// ErrStorageDecode marks persisted data that could not be decoded.
	// The ledger recovers from it by starting empty.
	ErrStorageDecode = errors.New("stored data is malformed")
	// ErrNotInitialized is returned by providers whose backing store does not exist yet.
	ErrNotInitialized = errors.New("storage not initialized")
)

// CapacityError reports a rejected add or update.
//
// Remaining is the day's unused budget at the time of rejection. Available is
// the largest value the activity could have been given: equal to Remaining for
// an add, and Remaining plus the activity's current minutes for an update.
type CapacityError struct {
	Day       string
	Requested int
	Remaining int
	Available int
}

func (e *CapacityError) Error() string {
	if e.Available != e.Remaining {
		return fmt.Sprintf("cannot set %d minutes on %s: only %d minutes available", e.Requested, e.Day, e.Available)
	}
	return fmt.Sprintf("cannot add %d minutes on %s: only %d minutes remaining", e.Requested, e.Day, e.Remaining)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// AsCapacity unwraps err into a *CapacityError.
func AsCapacity(err error) (*CapacityError, bool) {
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		return capErr, true
	}
	return nil, false
}

// Invalid wraps ErrInvalidActivity with a reason.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidActivity, fmt.Sprintf(format, args...))
}
