package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/timeflow/internal/backup"
	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/ledger"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/notifier"
	"github.com/julianstephens/timeflow/internal/storage"
	"github.com/julianstephens/timeflow/internal/utils"
)

// Context is passed to every command's Run method. Ledger is nil for
// commands that run before the store is opened (init, keyring).
type Context struct {
	Store    storage.Provider
	Ledger   *ledger.Ledger
	Notifier *notifier.Notifier
	Now      func() time.Time
	Out      io.Writer
	In       io.Reader
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// Confirm prints prompt and reads a yes/no answer. Anything but y/yes is no.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// Printf writes formatted command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line of command output.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Clock returns the current time, honoring an injected clock.
func (c *Context) Clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// RequireLedger fails commands that need an opened store.
func (c *Context) RequireLedger() (*ledger.Ledger, error) {
	if c.Ledger == nil {
		return nil, fmt.Errorf("%w: run 'timeflow init' first", apperrors.ErrNotInitialized)
	}
	return c.Ledger, nil
}

// ResolveDay turns a --date value into a day key.
func (c *Context) ResolveDay(input string) (string, error) {
	return utils.ResolveDate(input, c.Clock())
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !storage.IsFileBacked(c.Store) {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// NotifyProgress compares the selected day's total with before and raises a
// desktop alert when a threshold was crossed.
func (c *Context) NotifyProgress(before int) {
	if c.Ledger == nil {
		return
	}
	c.Notifier.ProgressChanged(c.Ledger.Day(), before, c.Ledger.TotalMinutes())
}

// MaxAvailableError is the early form-level rejection for an over-budget
// duration. The ledger's capacity check remains authoritative.
func MaxAvailableError(requested, max int) error {
	return fmt.Errorf("%s requested. Maximum %s available", utils.FormatMinutes(requested), utils.FormatMinutes(max))
}
