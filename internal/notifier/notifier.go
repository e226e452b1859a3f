// Package notifier raises a desktop alert when a day's logged time crosses a
// progress threshold.
package notifier

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/julianstephens/timeflow/internal/analytics"
	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/utils"
)

var alertFunc = func(title, message string) error {
	return beeep.Alert(title, message, "")
}

type Notifier struct {
	enabled bool
}

func New(enabled bool) *Notifier {
	if enabled {
		beeep.AppName = constants.AppName
	}
	return &Notifier{enabled: enabled}
}

// Enabled reports whether alerts will be sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.enabled
}

// Notify sends a desktop alert. Disabled notifiers do nothing.
func (n *Notifier) Notify(title, message string) error {
	if !n.Enabled() {
		return nil
	}
	if err := alertFunc(title, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// ProgressChanged alerts when a day moves into a higher progress level.
// Failures are logged, never returned. Returns true if an alert was sent.
func (n *Notifier) ProgressChanged(day string, before, after int) bool {
	if !n.Enabled() {
		return false
	}
	prev := analytics.DayProgress(before)
	next := analytics.DayProgress(after)
	if next.Level <= prev.Level || next.Level == analytics.LevelNormal {
		return false
	}

	title := fmt.Sprintf("%s: %.0f%% of the day logged", day, next.Percent)
	message := fmt.Sprintf("%s tracked, %s remaining.", utils.FormatMinutes(after), next.Remaining)
	if next.Level == analytics.LevelCritical {
		message = "Almost the whole day is accounted for. " + message
	}

	if err := n.Notify(title, message); err != nil {
		logger.Warn("Desktop notification failed", "day", day, "error", err)
		return false
	}
	logger.Debug("Sent progress notification", "day", day, "level", next.Level.String())
	return true
}
