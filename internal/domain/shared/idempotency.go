package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already processed.
// Inbound webhooks are deduplicated through it.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Forget removes a key so it can be processed again
	Forget(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
