package repositories

import (
	"context"
	"sync"
)

// MemoryKVStore is an in-memory implementation of KVStore.
type MemoryKVStore struct {
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryKVStore creates a new instance of MemoryKVStore.
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (s *MemoryKVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value under key.
func (s *MemoryKVStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

// Clear removes key.
func (s *MemoryKVStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
