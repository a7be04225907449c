package testutil

import (
	"context"
	"sync"

	ierr "github.com/billflow/billflow/internal/errors"
)

// InMemoryKVStore is a kv.Store for tests. Writes can be made to fail on
// demand to exercise persistence rollback paths.
type InMemoryKVStore struct {
	mu      sync.RWMutex
	records map[string][]byte

	failWrites bool
	failKeys   map[string]bool
	PutCalls   int
}

func NewInMemoryKVStore() *InMemoryKVStore {
	return &InMemoryKVStore{
		records:  make(map[string][]byte),
		failKeys: make(map[string]bool),
	}
}

// FailWrites toggles write failure injection for all keys
func (s *InMemoryKVStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// FailKey toggles write failure injection for a single key. A PutAll that
// touches a failing key rejects the whole batch.
func (s *InMemoryKVStore) FailKey(key string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKeys[key] = fail
}

func (s *InMemoryKVStore) writeError() error {
	return ierr.NewError("persistence unavailable").
		WithHint("The persistence layer rejected the write").
		Mark(ierr.ErrDatabase)
}

func (s *InMemoryKVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, found := s.records[key]
	if !found {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *InMemoryKVStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.PutCalls++
	if s.failWrites || s.failKeys[key] {
		return s.writeError()
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[key] = stored
	return nil
}

func (s *InMemoryKVStore) PutAll(_ context.Context, records map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.PutCalls++
	if s.failWrites {
		return s.writeError()
	}
	for key := range records {
		if s.failKeys[key] {
			return s.writeError()
		}
	}
	for key, value := range records {
		stored := make([]byte, len(value))
		copy(stored, value)
		s.records[key] = stored
	}
	return nil
}

func (s *InMemoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return s.writeError()
	}
	delete(s.records, key)
	return nil
}

// Snapshot returns a copy of the stored record, for asserting what was
// actually persisted
func (s *InMemoryKVStore) Snapshot(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, found := s.records[key]
	if !found {
		return nil, false
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true
}
