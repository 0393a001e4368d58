package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is a process-local Store. Records do not survive a restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	nowFunc func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*Record),
		nowFunc: time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required: %w", ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("[InMemoryStore Get] %s: %w", id, ErrNotFound)
	}
	return r.Clone(), nil
}

// Upsert creates or replaces the record, keeping the original CreatedAt.
func (s *InMemoryStore) Upsert(_ context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record with an id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := record.Clone()
	now := s.nowFunc()
	if existing, ok := s.records[record.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.records[record.ID] = stored
	return nil
}
