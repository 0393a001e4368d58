package credentialsrepofake

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-photos-proxy/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory store whose availability can be switched off per operation.
type FakeStore struct {
	lock    sync.RWMutex
	records map[string]*credentials.Record

	getUnavailable    bool
	upsertUnavailable bool
	upsertFailures    int // remaining forced upsert failures

	gets    int
	upserts int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{records: make(map[string]*credentials.Record)}
}

// SetUnavailable makes every Get and Upsert fail with ErrStoreUnavailable.
func (s *FakeStore) SetUnavailable(unavailable bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.getUnavailable = unavailable
	s.upsertUnavailable = unavailable
}

// FailNextUpserts makes the next n upserts fail with ErrStoreUnavailable.
func (s *FakeStore) FailNextUpserts(n int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.upsertFailures = n
}

// Seed stores a record without counting it as an upsert.
func (s *FakeStore) Seed(record *credentials.Record) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.records[record.ID] = record.Clone()
}

func (s *FakeStore) Get(_ context.Context, id string) (*credentials.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.gets++

	if s.getUnavailable {
		return nil, fmt.Errorf("fake get %s: %w", id, credentials.ErrStoreUnavailable)
	}
	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("fake get %s: %w", id, credentials.ErrNotFound)
	}
	return r.Clone(), nil
}

func (s *FakeStore) Upsert(_ context.Context, record *credentials.Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.upserts++

	if s.upsertUnavailable {
		return fmt.Errorf("fake upsert %s: %w", record.ID, credentials.ErrStoreUnavailable)
	}
	if s.upsertFailures > 0 {
		s.upsertFailures--
		return fmt.Errorf("fake upsert %s: %w", record.ID, credentials.ErrStoreUnavailable)
	}
	stored := record.Clone()
	if existing, ok := s.records[record.ID]; ok && !existing.CreatedAt.IsZero() {
		stored.CreatedAt = existing.CreatedAt
	}
	s.records[record.ID] = stored
	return nil
}

// Record returns the stored record for id, or nil.
func (s *FakeStore) Record(id string) *credentials.Record {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.records[id].Clone()
}

func (s *FakeStore) Gets() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.gets
}

func (s *FakeStore) Upserts() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.upserts
}
