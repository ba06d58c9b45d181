package repositories

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KVStore.Get when no value is stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the persisted key/value abstraction the storefront state lives in.
// Values are opaque bytes; Clear on a missing key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}
