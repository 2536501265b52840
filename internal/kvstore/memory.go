package kvstore

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. GetErr and SetErr, when non-nil, are
// returned by the corresponding operation so callers can exercise failure
// paths.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
	writes  int

	GetErr error
	SetErr error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]string{}}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	value, ok := s.entries[key]
	return value, ok, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.entries[key] = value
	s.writes++
	return nil
}

// Put seeds a raw value without counting it as a write.
func (s *MemoryStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Writes reports how many successful Set calls the store has seen.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
