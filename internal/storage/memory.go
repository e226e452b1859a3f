package storage

import (
	"fmt"

	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/storage/records"
)

// MemoryStore keeps the encoded snapshot in memory, using the same record
// encoding as the file stores.
type MemoryStore struct {
	data        []byte
	quarantined [][]byte
	saves       int

	// FailSave, when set, is returned from Save without storing anything.
	FailSave error
	// FailLoad, when set, is returned from Load.
	FailLoad error
	// FailQuarantine, when set, is returned from Quarantine.
	FailQuarantine error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Open() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetConfigPath() string { return ":memory:" }

func (s *MemoryStore) Load() (models.DayMap, error) {
	if s.FailLoad != nil {
		return nil, s.FailLoad
	}
	if s.data == nil {
		return nil, nil
	}
	return records.Decode(s.data)
}

func (s *MemoryStore) Save(days models.DayMap) error {
	if s.FailSave != nil {
		return s.FailSave
	}
	data, err := records.Encode(days)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

// Quarantine moves the stored bytes aside and leaves the store empty.
func (s *MemoryStore) Quarantine() (string, error) {
	if s.FailQuarantine != nil {
		return "", s.FailQuarantine
	}
	s.quarantined = append(s.quarantined, s.data)
	s.data = nil
	return fmt.Sprintf(":memory:corrupt-%d", len(s.quarantined)), nil
}

// Quarantined returns every snapshot moved aside by Quarantine.
func (s *MemoryStore) Quarantined() [][]byte {
	return s.quarantined
}

// SetRaw replaces the stored bytes, e.g. with malformed data.
func (s *MemoryStore) SetRaw(data []byte) {
	s.data = data
}

// Raw returns the stored bytes.
func (s *MemoryStore) Raw() []byte {
	return s.data
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	return s.saves
}
