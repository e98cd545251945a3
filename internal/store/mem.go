package store

import (
	"context"
	"sync"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
)

// MemStore keeps session records in memory, newest first.
type MemStore struct {
	records []model.Record
	mu      sync.RWMutex
}

// NewMemStore creates an empty in-memory record store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Append adds a record at the front of the history.
func (s *MemStore) Append(_ context.Context, record model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]model.Record{record}, s.records...)
	return nil
}

// Update replaces the record with the given id in place, preserving its
// position. Updating an absent id is a no-op.
func (s *MemStore) Update(_ context.Context, id string, record model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			record.ID = id
			s.records[i] = record
			return nil
		}
	}
	return nil
}

// Get returns a copy of the record with the given id.
func (s *MemStore) Get(_ context.Context, id string) (*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].ID == id {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, common.ErrRecordNotFound
}

// All returns the session history, newest first.
func (s *MemStore) All(_ context.Context) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// FindDuplicate returns the first stored record that duplicates the
// candidate, or nil when none does.
func (s *MemStore) FindDuplicate(_ context.Context, candidate model.Record) (*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if IsDuplicate(s.records[i], candidate) {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, nil
}

// Clear empties the session history.
func (s *MemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}
