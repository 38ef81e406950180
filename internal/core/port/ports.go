// Package port declares the interfaces between the core services and their
// adapters.
package port

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by KeyValueStore.Get on a miss.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the external TTL key-value backend (Redis in production,
// in-memory in tests). Implementations must be safe for concurrent use.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Update applies fn to the current value of key under an optimistic
	// transaction. fn receives nil when the key is absent and returns the new
	// value and TTL; returning a nil value leaves the entry unchanged.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, time.Duration, error)) error

	// Ping reports backend reachability.
	Ping(ctx context.Context) error
}

// PDFCompiler compiles typesetting markup into PDF bytes. Compile is safe for
// concurrent use; implementations bound parallelism internally.
type PDFCompiler interface {
	// Warmup performs the one-shot costly initialization (binary lookup,
	// font catalog load). Safe to call more than once.
	Warmup(ctx context.Context) error
	Compile(ctx context.Context, source string) ([]byte, error)
	Ready() bool
}
