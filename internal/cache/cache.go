// Package cache implements a read-through accessor over a shared key-value store.
//
// Values are stored as JSON text with an explicit expiration. Reads that find
// nothing, find an expired entry, or find a payload that no longer decodes into
// the expected type all report a miss; only store failures surface as errors.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidTTL is returned by Set when the expiration is not positive.
	ErrInvalidTTL = errors.New("cache: ttl must be positive")

	// ErrStoreUnavailable wraps failures talking to the underlying store.
	ErrStoreUnavailable = errors.New("cache: store unavailable")
)

// Store is the key-value backend. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the raw payload for key. ok is false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value under key, replacing any existing entry, expiring after ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	Ping(ctx context.Context) error
	Close() error
}
