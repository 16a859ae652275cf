// Package kv defines the key-value persistence interface and its backends.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// KV is the minimal key-value contract the stores are built on.
type KV interface {
	// Get returns the value stored at key.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value at key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	SetAdd(ctx context.Context, key string, members ...string) error
	SetRemove(ctx context.Context, key string, members ...string) error
	SetMembers(ctx context.Context, key string) ([]string, error)

	Close() error
}
