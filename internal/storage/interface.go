package storage

import "github.com/julianstephens/timeflow/internal/models"

type Provider interface {
	// Lifecycle
	//
	// Init creates the backing store (directories, schema) if needed and
	// leaves it open. It is safe to call on an existing store.
	Init() error
	// Open attaches to an existing store and returns
	// errors.ErrNotInitialized when there is none.
	Open() error
	Close() error

	// Load returns the full snapshot, or nil with no error when nothing has
	// been saved yet. Malformed data is reported as errors.ErrStorageDecode.
	Load() (models.DayMap, error)
	// Save replaces the full snapshot.
	Save(models.DayMap) error

	// Utils
	GetConfigPath() string
}
