package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/annolab/imagejudge/internal/domain"
)

// InMemStore keeps records in memory, for tests and ephemeral runs.
type InMemStore struct {
	mu      sync.RWMutex
	records []domain.AnnotationRecord
}

func NewInMemStore() *InMemStore {
	return &InMemStore{}
}

func (s *InMemStore) Append(ctx context.Context, records []domain.AnnotationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *InMemStore) ReadAll(ctx context.Context) ([]domain.AnnotationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}
