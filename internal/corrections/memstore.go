package corrections

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// MemStore is an in-memory CorrectionStore for tests and environments
// without a writable database path.
type MemStore struct {
	corrections map[string]model.Correction
	mu          sync.RWMutex
}

// NewMemStore creates an empty in-memory correction store.
func NewMemStore() *MemStore {
	return &MemStore{corrections: make(map[string]model.Correction)}
}

// All returns every stored correction, sorted by keyword.
func (s *MemStore) All(_ context.Context) ([]model.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Correction, 0, len(s.corrections))
	for _, c := range s.corrections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyword < out[j].Keyword })
	return out, nil
}

// Save inserts or replaces a correction rule.
func (s *MemStore) Save(_ context.Context, correction *model.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if correction.LastUpdated.IsZero() {
		correction.LastUpdated = time.Now()
	}
	s.corrections[correction.Keyword] = *correction
	return nil
}

// Delete removes a correction by keyword.
func (s *MemStore) Delete(_ context.Context, keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.corrections, keyword)
	return nil
}

// IncrementUseCount bumps the use counter for a correction.
func (s *MemStore) IncrementUseCount(_ context.Context, keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.corrections[keyword]; ok {
		c.UseCount++
		s.corrections[keyword] = c
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}
