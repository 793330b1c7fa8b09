package shared

import (
	"context"
	"time"
)

// ReleaseFunc gives up a lock taken through Locker
type ReleaseFunc func(ctx context.Context) error

// Locker grants exclusive, expiring ownership of a key.
// Work that must not overlap across instances takes a lock first.
type Locker interface {
	// TryLock takes key for at most ttl. ok is false when another holder owns it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release ReleaseFunc, ok bool, err error)
}
