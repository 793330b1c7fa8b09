package cache

import (
	"context"
	"sync"
	"time"

	"github.com/swagpaypal/backend/internal/domain/shared"
)

type heldLock struct {
	owner    uint64
	deadline time.Time
}

// InMemoryLocker holds locks inside the process. Other instances do not see them.
type InMemoryLocker struct {
	mu    sync.Mutex
	held  map[string]heldLock
	owner uint64
	now   func() time.Time
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		held: make(map[string]heldLock),
		now:  time.Now,
	}
}

// TryLock takes key unless an unexpired holder owns it
func (l *InMemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (shared.ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.held[key]; ok && now.Before(h.deadline) {
		return nil, false, nil
	}
	l.owner++
	owner := l.owner
	l.held[key] = heldLock{owner: owner, deadline: now.Add(ttl)}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if h, ok := l.held[key]; ok && h.owner == owner {
			delete(l.held, key)
		}
		return nil
	}
	return release, true, nil
}

var _ shared.Locker = (*InMemoryLocker)(nil)
