package storage

import (
	"context"
	"errors"
)

// Storage is the local persistent key-value slot the cart is mirrored into.
// Values are opaque blobs that are always written wholesale.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

var ErrNotFound = errors.New("key not found")
