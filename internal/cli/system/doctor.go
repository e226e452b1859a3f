package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/timeflow/internal/backup"
	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/keyring"
	"github.com/julianstephens/timeflow/internal/lock"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/migration"
	"github.com/julianstephens/timeflow/internal/storage"
	"github.com/julianstephens/timeflow/internal/storage/postgres"
	"github.com/julianstephens/timeflow/internal/validation"
)

type checkStatus int

const (
	statusOK checkStatus = iota
	statusWarn
	statusFail
	statusSkip
)

func (s checkStatus) symbol() string {
	switch s {
	case statusWarn:
		return "⚠"
	case statusFail:
		return "❌"
	case statusSkip:
		return "⊘"
	default:
		return "✓"
	}
}

func (s checkStatus) String() string {
	switch s {
	case statusWarn:
		return "WARNING"
	case statusFail:
		return "FAIL"
	case statusSkip:
		return "SKIPPED"
	default:
		return "OK"
	}
}

type checkResult struct {
	status checkStatus
	detail string
}

func passed() checkResult { return checkResult{status: statusOK} }
func passedWith(detail string) checkResult { return checkResult{status: statusOK, detail: detail} }
func warn(detail string) checkResult { return checkResult{status: statusWarn, detail: detail} }
func skip(detail string) checkResult { return checkResult{status: statusSkip, detail: detail} }
func fail(err error) checkResult { return checkResult{status: statusFail, detail: err.Error()} }

type check struct {
	name string
	run  func(ctx *cli.Context) checkResult
}

var doctorChecks = []check{
	{"Storage reachable", checkStorageReachable},
	{"Schema version", checkSchemaVersion},
	{"Data validation", checkValidation},
	{"Lock file", checkLock},
	{"Log directory", checkLogDir},
	{"Backups present", checkBackupsPresent},
	{"OS keyring", checkKeyring},
	{"Clock/timezone", checkClockTimezone},
}

type DoctorCmd struct {
	Timeout time.Duration `help:"Give up on checks after this long." default:"30s"`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	results := runChecks(ctx, doctorChecks, cmd.Timeout)

	hasError := false
	for i, c := range doctorChecks {
		r := results[i]
		ctx.Printf("%s %s: %s\n", r.status.symbol(), c.name, r.status)
		if r.detail != "" {
			ctx.Printf("   %s\n", r.detail)
		}
		if r.status == statusFail {
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

// runChecks runs every check concurrently. Results keep the order of checks.
// A check still running at the timeout is reported as failed.
func runChecks(ctx *cli.Context, checks []check, timeout time.Duration) []checkResult {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	results := make([]checkResult, len(checks))
	g, gctx := errgroup.WithContext(base)
	for i, c := range checks {
		g.Go(func() error {
			done := make(chan checkResult, 1)
			go func() { done <- c.run(ctx) }()
			select {
			case r := <-done:
				results[i] = r
			case <-gctx.Done():
				results[i] = fail(fmt.Errorf("timed out: %w", gctx.Err()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Doctor checks aborted", "error", err)
	}
	return results
}

func checkStorageReachable(ctx *cli.Context) checkResult {
	if _, err := ctx.Store.Load(); err != nil {
		return fail(fmt.Errorf("failed to load storage: %w", err))
	}
	return passedWith(ctx.Store.GetConfigPath())
}

func checkSchemaVersion(ctx *cli.Context) checkResult {
	s, isSQL := ctx.Store.(interface {
		Runner() (*migration.Runner, error)
	})
	if !isSQL {
		return skip("not a SQL backend")
	}
	runner, err := s.Runner()
	if err != nil {
		return fail(err)
	}
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fail(fmt.Errorf("failed to get current schema version: %w", err))
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fail(fmt.Errorf("failed to get latest schema version: %w", err))
	}
	switch {
	case current > latest:
		return fail(fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest))
	case current < latest:
		return fail(fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'timeflow migrate'", current, latest))
	}
	return passedWith(fmt.Sprintf("version %d", current))
}

func checkValidation(ctx *cli.Context) checkResult {
	days, err := ctx.Store.Load()
	if err != nil {
		return skip("storage not reachable")
	}
	result := validation.New().ValidateDays(days)
	if n := len(result.Errors()); n > 0 {
		return fail(fmt.Errorf("%d error(s) found - run 'timeflow validate' for details", n))
	}
	if result.HasConflicts() {
		return warn(fmt.Sprintf("%d warning(s) - run 'timeflow validate' for details", len(result.Conflicts)))
	}
	return passedWith(fmt.Sprintf("%d activities across %d days", days.ActivityCount(), len(days)))
}

func checkLock(ctx *cli.Context) checkResult {
	dir, err := storage.ConfigDir(ctx.Store)
	if err != nil {
		return fail(err)
	}
	pid, alive, err := lock.Status(dir)
	switch {
	case err != nil:
		return fail(err)
	case pid == 0:
		return passedWith("not held")
	case !alive:
		return warn(fmt.Sprintf("stale lock from pid %d will be replaced on next start", pid))
	case pid == os.Getpid():
		return passedWith("held by this process")
	}
	return warn(fmt.Sprintf("held by running timeflow process %d", pid))
}

func checkLogDir(ctx *cli.Context) checkResult {
	dir, err := storage.ConfigDir(ctx.Store)
	if err != nil {
		return fail(err)
	}
	logDir := logger.LogDir(dir)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fail(fmt.Errorf("cannot create %s: %w", logDir, err))
	}
	f, err := os.CreateTemp(logDir, ".doctor-*")
	if err != nil {
		return fail(fmt.Errorf("%s is not writable: %w", logDir, err))
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return passedWith(logDir)
}

func checkBackupsPresent(ctx *cli.Context) checkResult {
	if !storage.IsFileBacked(ctx.Store) {
		return skip("backups only apply to file storage")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return warn(fmt.Sprintf("failed to list backups: %v", err))
	}
	if len(backups) == 0 {
		return warn("no backups found - consider creating one with 'timeflow backup create'")
	}
	return passedWith(fmt.Sprintf("%d backup(s), newest %s", len(backups), backups[0].Timestamp.Format("2006-01-02 15:04")))
}

func checkKeyring(ctx *cli.Context) checkResult {
	if !keyring.IsAvailable() {
		if _, isPostgres := ctx.Store.(*postgres.Store); isPostgres {
			return warn("OS keyring unavailable; set TIMEFLOW_DB_CONNECTION instead")
		}
		return skip("OS keyring unavailable (only needed for PostgreSQL)")
	}
	return passed()
}

func checkClockTimezone(ctx *cli.Context) checkResult {
	now := ctx.Clock()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fail(fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339)))
	}
	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		return passedWith("timezone is UTC; days roll over at UTC midnight")
	}
	return passedWith(now.Location().String())
}
