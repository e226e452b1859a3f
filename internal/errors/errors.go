package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/timeflow/internal/logger"
)

// Format renders err for the terminal with an "Error: " prefix.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf is Format for a message built from format and args.
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests a next step for the domain errors a user can act on, or
// returns "".
func Hint(err error) string {
	if capErr, ok := AsCapacity(err); ok {
		if capErr.Available <= 0 {
			return fmt.Sprintf("%s is full. Pick another --date or shorten an existing activity.", capErr.Day)
		}
		return fmt.Sprintf("At most %d minutes fit on %s.", capErr.Available, capErr.Day)
	}
	switch {
	case errors.Is(err, ErrNotInitialized):
		return "Run 'timeflow init' to create the data store."
	case errors.Is(err, ErrNotFound):
		return "Use 'timeflow day --show-ids' to list activity ids."
	case errors.Is(err, ErrStorageDecode):
		return "The data store is unreadable and was left untouched. Restore it with 'timeflow backup restore'."
	}
	return ""
}

// Fatal logs err, prints it with any hint to stderr and exits 1. A nil err
// does nothing.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
	os.Exit(1)
}
