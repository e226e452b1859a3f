package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver and the golang-migrate database driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ErrDirty is returned when a previous migration failed halfway.
var ErrDirty = errors.New("database schema is dirty")

// Runner manages database schema migrations.
//
// golang-migrate closes the database it is handed, so every operation opens
// its own short-lived connection from dsn instead of borrowing the store's.
type Runner struct {
	dialect Dialect
	dsn     string
	fs      fs.FS
}

// NewRunner creates a new migration runner over a directory of
// golang-migrate files (N_name.up.sql / N_name.down.sql).
func NewRunner(dialect Dialect, dsn string, migrationFS fs.FS) *Runner {
	return &Runner{
		dialect: dialect,
		dsn:     dsn,
		fs:      migrationFS,
	}
}

func (r *Runner) open() (*migrate.Migrate, error) {
	db, err := sql.Open(string(r.dialect), r.dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration database: %w", err)
	}

	var driver database.Driver
	switch r.dialect {
	case DialectSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DialectPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", r.dialect)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create %s driver: %w", r.dialect, err)
	}

	src, err := iofs.New(r.fs, ".")
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(r.dialect), driver)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	_, _ = m.Close()
}

// Versions returns every migration version available in the source, ascending.
func (r *Runner) Versions() ([]int, error) {
	src, err := iofs.New(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	defer src.Close()

	var versions []int
	v, err := src.First()
	for err == nil {
		versions = append(versions, int(v))
		v, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	return versions, nil
}

// GetLatestVersion returns the highest migration version available.
func (r *Runner) GetLatestVersion() (int, error) {
	versions, err := r.Versions()
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[len(versions)-1], nil
}

// GetCurrentVersion returns the applied schema version, 0 for a fresh database.
func (r *Runner) GetCurrentVersion() (int, error) {
	m, err := r.open()
	if err != nil {
		return 0, err
	}
	defer closeMigrate(m)
	return currentVersion(m)
}

func currentVersion(m *migrate.Migrate) (int, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return int(v), fmt.Errorf("%w at version %d", ErrDirty, v)
	}
	return int(v), nil
}

// ApplyMigrations applies all pending migrations up to the latest version.
// Returns the number of migrations applied.
func (r *Runner) ApplyMigrations(logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	versions, err := r.Versions()
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		logFn("No migration files found")
		return 0, nil
	}
	latest := versions[len(versions)-1]

	m, err := r.open()
	if err != nil {
		return 0, err
	}
	defer closeMigrate(m)

	current, err := currentVersion(m)
	if err != nil {
		return 0, err
	}
	if current > latest {
		return 0, fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", current, latest)
	}

	pending := 0
	for _, v := range versions {
		if v > current {
			pending++
		}
	}
	if pending == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", current))
		return 0, nil
	}

	logFn(fmt.Sprintf("Current schema version: %d", current))
	logFn(fmt.Sprintf("Target schema version: %d", latest))
	logFn(fmt.Sprintf("Applying %d migration(s)...", pending))

	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	logFn(fmt.Sprintf("Applied %d migration(s) in %v", pending, time.Since(start)))
	return pending, nil
}

// ValidateVersion checks that the database is not ahead of the application.
func (r *Runner) ValidateVersion() error {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return err
	}

	latest, err := r.GetLatestVersion()
	if err != nil {
		return err
	}

	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", current, latest)
	}
	return nil
}
