// Package kvstore defines the key-value store the task list is persisted in
// and the drivers that need no external service.
//
// Values are opaque byte blobs. Key carries the Go type stored under a key
// so that callers read and write typed values through Value and SetValue,
// which encode them as JSON.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kvstore: store closed")

// Store is a flat key-value store.
type Store interface {
	// Get returns the value stored under key. ok is false if there is none.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the store's resources.
	Close() error
}

// Key is a store key bound to the type of its value.
type Key[T any] string

// Value reads and decodes the value stored under key.
func Value[T any](ctx context.Context, s Store, key Key[T]) (T, bool, error) {
	var v T
	data, ok, err := s.Get(ctx, string(key))
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decode %q: %w", string(key), err)
	}
	return v, true, nil
}

// SetValue encodes v and stores it under key.
func SetValue[T any](ctx context.Context, s Store, key Key[T], v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", string(key), err)
	}
	return s.Set(ctx, string(key), data)
}
