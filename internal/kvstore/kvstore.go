// Package kvstore provides the key-value scopes the cart is mirrored
// into: a durable scope that survives restarts and a session scope that
// lives only as long as the process.
package kvstore

import (
	"context"
	"errors"
)

var ErrNoValue = errors.New("kvstore: no value for key")

// Store is one key-value scope. Get returns ErrNoValue for missing keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
