package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/migration"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/storage/records"
	"github.com/julianstephens/timeflow/internal/utils"
	"github.com/julianstephens/timeflow/migrations"
)

type Store struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

func (s *Store) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return s.openDB()
}

func (s *Store) Open() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotInitialized, s.path)
	}

	if err := s.validateSchemaVersion(); err != nil {
		return err
	}
	// Bring older files up to date; a no-op when current.
	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return s.openDB()
}

func (s *Store) openDB() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// tableExists checks if a table exists in the SQLite database.
// The check is case-insensitive to match SQLite's behavior.
func (s *Store) tableExists(tableName string) (bool, error) {
	var count int
	row := s.db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name COLLATE NOCASE = ?", tableName)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(migration.DialectSQLite, s.path, subFS), nil
}

func (s *Store) runMigrations() error {
	runner, err := s.Runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg)
	})
	return err
}

func (s *Store) validateSchemaVersion() error {
	runner, err := s.Runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) Load() (models.DayMap, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	rows, err := s.db.Query(`
		SELECT id, day, name, category, minutes, created_at
		FROM activities
		ORDER BY day, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	days := models.DayMap{}
	for rows.Next() {
		var (
			rec records.ActivityRecord
			day string
		)
		if err := rows.Scan(&rec.ID, &day, &rec.Name, &rec.Category, &rec.Minutes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageDecode, err)
		}
		if !utils.IsDayKey(day) {
			return nil, fmt.Errorf("%w: invalid day key %q", apperrors.ErrStorageDecode, day)
		}
		a, err := rec.ToActivity()
		if err != nil {
			return nil, err
		}
		days[day] = append(days[day], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	if len(days) == 0 {
		return nil, nil
	}
	return days, nil
}

// Quarantine copies every activity row into activities_corrupt_<timestamp>
// and empties activities, so the next save cannot destroy unreadable rows.
func (s *Store) Quarantine() (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("storage not loaded")
	}
	table := "activities_corrupt_" + s.now().UTC().Format("20060102_150405")

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("CREATE TABLE " + table + " AS SELECT * FROM activities"); err != nil {
		return "", fmt.Errorf("failed to copy activities to %s: %w", table, err)
	}
	if _, err := tx.Exec("DELETE FROM activities"); err != nil {
		return "", fmt.Errorf("failed to clear activities: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit quarantine: %w", err)
	}
	logger.Warn("Moved unreadable activities aside", "table", table)
	return table, nil
}

// Save replaces every row in one transaction.
func (s *Store) Save(days models.DayMap) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM activities"); err != nil {
		return fmt.Errorf("failed to clear activities: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO activities (id, day, position, name, category, minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for day, activities := range days {
		for i, a := range activities {
			rec := records.FromActivity(a)
			if _, err := stmt.Exec(rec.ID, day, i, rec.Name, rec.Category, rec.Minutes, rec.CreatedAt); err != nil {
				return fmt.Errorf("failed to save activity %s: %w", a.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activities: %w", err)
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil until Init or Open has succeeded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
