package kv

import (
	"context"
	"fmt"
	"sync"
)

type memoryStore struct {
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryStore returns a process-local Store, used in tests and as a
// fallback when no durable path is configured.
func NewMemoryStore() Store {
	return &memoryStore{values: map[string][]byte{}}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", key, ErrKeyNotFound)
	}

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
