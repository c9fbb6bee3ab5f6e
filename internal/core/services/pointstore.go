package services

import (
	"sync"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// PointStore holds the current point collection of a session.
// Readers get immutable snapshots; writers replace the whole collection.
type PointStore struct {
	mu       sync.Mutex
	snapshot domain.Collection
}

// NewPointStore creates a store holding an empty collection.
func NewPointStore() *PointStore {
	return &PointStore{snapshot: domain.NewCollection()}
}

// Snapshot returns the current collection.
func (s *PointStore) Snapshot() domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Update applies fn to the current collection and stores its result.
// When fn fails the collection is left as it was.
func (s *PointStore) Update(fn func(domain.Collection) (domain.Collection, error)) (domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.snapshot)
	if err != nil {
		return s.snapshot, err
	}
	s.snapshot = next
	return next, nil
}

// Reset replaces the collection outright.
func (s *PointStore) Reset(c domain.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = c
}
