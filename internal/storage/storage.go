package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/keyring"
	"github.com/julianstephens/timeflow/internal/storage/postgres"
	"github.com/julianstephens/timeflow/internal/storage/sqlite"
)

// Kind names a storage backend.
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindJSON     Kind = "json"
	KindPostgres Kind = "postgres"
	KindMemory   Kind = "memory"
)

// ErrNoConnection is returned when the postgres backend is requested but no
// connection string is configured anywhere.
var ErrNoConnection = errors.New("no PostgreSQL connection string configured")

var (
	lookupEnv        = os.LookupEnv
	keyringGetConnFn = keyring.GetConnectionString
)

// KindOf classifies a --config value without touching the backend.
func KindOf(config string) Kind {
	c := strings.TrimSpace(config)
	switch {
	case c == ":memory:":
		return KindMemory
	case c == "postgres" || c == "keyring" || postgres.IsConnString(c):
		return KindPostgres
	case strings.HasSuffix(strings.ToLower(c), ".json"):
		return KindJSON
	default:
		return KindSQLite
	}
}

// New builds the provider selected by config:
//
//   - postgres:// or postgresql:// URL without a password
//   - "postgres" or "keyring": connection from TIMEFLOW_DB_CONNECTION, then the OS keyring
//   - a path ending in .json: JSON file store
//   - ":memory:": in-process store
//   - anything else: SQLite database file
func New(config string) (Provider, error) {
	c := strings.TrimSpace(config)
	switch KindOf(c) {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindPostgres:
		if postgres.IsConnString(c) {
			if err := postgres.ValidateConnString(c); err != nil {
				return nil, err
			}
			return postgres.New(c), nil
		}
		connStr, err := resolveConnection()
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	case KindJSON:
		path, err := ExpandPath(c)
		if err != nil {
			return nil, err
		}
		return NewJSONStore(path), nil
	default:
		path, err := ExpandPath(c)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// resolveConnection reads the connection string from the environment or the
// keyring. These sources may carry credentials.
func resolveConnection() (string, error) {
	if v, ok := lookupEnv(constants.EnvDBConnection); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	connStr, err := keyringGetConnFn()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: set %s or run 'timeflow keyring set'", ErrNoConnection, constants.EnvDBConnection)
		}
		return "", err
	}
	return connStr, nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		path = constants.DefaultConfigPath
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}

// ConfigDir returns the directory that holds logs, backups and the lock file
// for a provider. Non-file backends use the default config directory.
func ConfigDir(p Provider) (string, error) {
	switch p.(type) {
	case *sqlite.Store, *JSONStore:
		return filepath.Dir(p.GetConfigPath()), nil
	}
	path, err := ExpandPath(constants.DefaultConfigPath)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// IsFileBacked reports whether the provider stores data in a local file.
func IsFileBacked(p Provider) bool {
	switch p.(type) {
	case *sqlite.Store, *JSONStore:
		return true
	}
	return false
}
