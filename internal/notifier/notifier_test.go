package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentAlert struct {
	title, message string
}

func captureAlerts(t *testing.T, err error) *[]sentAlert {
	t.Helper()
	var sent []sentAlert
	old := alertFunc
	alertFunc = func(title, message string) error {
		sent = append(sent, sentAlert{title: title, message: message})
		return err
	}
	t.Cleanup(func() { alertFunc = old })
	return &sent
}

func TestDisabledNotifierSendsNothing(t *testing.T) {
	sent := captureAlerts(t, nil)
	n := New(false)

	require.NoError(t, n.Notify("t", "m"))
	assert.False(t, n.ProgressChanged("2024-01-01", 0, 1440))
	assert.Empty(t, *sent)

	var nilNotifier *Notifier
	assert.False(t, nilNotifier.Enabled())
}

func TestProgressChanged(t *testing.T) {
	tests := []struct {
		name          string
		before, after int
		want          bool
	}{
		{name: "stays normal", before: 0, after: 600, want: false},
		{name: "enters warning", before: 900, after: 1008, want: true},
		{name: "enters critical from normal", before: 0, after: 1300, want: true},
		{name: "already warning", before: 1010, after: 1100, want: false},
		{name: "warning to critical", before: 1100, after: 1296, want: true},
		{name: "drops back", before: 1300, after: 200, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sent := captureAlerts(t, nil)
			got := New(true).ProgressChanged("2024-01-01", tt.before, tt.after)
			assert.Equal(t, tt.want, got)
			if tt.want {
				require.Len(t, *sent, 1)
				assert.Contains(t, (*sent)[0].title, "2024-01-01")
			} else {
				assert.Empty(t, *sent)
			}
		})
	}
}

func TestProgressChangedSwallowsErrors(t *testing.T) {
	captureAlerts(t, assert.AnError)
	assert.False(t, New(true).ProgressChanged("2024-01-01", 0, 1440))
	assert.ErrorIs(t, New(true).Notify("t", "m"), assert.AnError)
}
