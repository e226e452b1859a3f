package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/logger"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/storage/records"
)

const jsonStoreVersion = 1

type jsonFile struct {
	Version int              `json:"version"`
	Days    records.Snapshot `json:"days"`
}

type JSONStore struct {
	path string
	now  func() time.Time
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
		now:  time.Now,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	return s.Save(models.DayMap{})
}

func (s *JSONStore) Open() error {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrNotInitialized, s.path)
		}
		return fmt.Errorf("failed to stat storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Load() (models.DayMap, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	return decodeJSONFile(data)
}

func decodeJSONFile(data []byte) (models.DayMap, error) {
	var f jsonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageDecode, err)
	}
	if f.Version > jsonStoreVersion {
		return nil, fmt.Errorf("%w: file version %d is newer than supported version %d",
			apperrors.ErrStorageDecode, f.Version, jsonStoreVersion)
	}
	if f.Days == nil {
		return nil, nil
	}
	return f.Days.ToDays()
}

// Quarantine moves an undecodable file aside so the next save cannot
// overwrite what may still be recoverable by hand.
func (s *JSONStore) Quarantine() (string, error) {
	dest := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().Format("20060102-150405"))
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("quarantine target %s already exists", dest)
	}
	if err := os.Rename(s.path, dest); err != nil {
		return "", fmt.Errorf("failed to move corrupt storage aside: %w", err)
	}
	logger.Warn("Moved corrupt storage aside", "path", s.path, "moved_to", dest)
	return dest, nil
}

func (s *JSONStore) Save(days models.DayMap) error {
	data, err := json.MarshalIndent(jsonFile{
		Version: jsonStoreVersion,
		Days:    records.FromDays(days),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	// Write to a temp file in the same directory and rename over the
	// original so a crash never leaves a half-written file.
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
