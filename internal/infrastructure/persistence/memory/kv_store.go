// Package memory keeps the key-value store in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/garyjia/caredoc/internal/application/port"
)

// KVStore implements port.KeyValueStore with a map
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ port.KeyValueStore = (*KVStore)(nil)

// NewKVStore creates an empty store
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, port.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key
func (s *KVStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
