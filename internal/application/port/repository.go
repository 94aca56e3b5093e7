package port

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for an absent key
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore persists raw values by key
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
