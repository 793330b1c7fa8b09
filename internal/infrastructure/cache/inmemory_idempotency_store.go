package cache

import (
	"context"
	"sync"
	"time"

	"github.com/swagpaypal/backend/internal/domain/shared"
)

// sweepEvery bounds how often MarkProcessed scans for expired keys.
const sweepEvery = 5 * time.Minute

// InMemoryIdempotencyStore remembers webhook delivery keys inside the process.
// Redeliveries are only recognised by the instance that saw the first attempt.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		deadlines: make(map[string]time.Time),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// MarkProcessed records key for ttl. It returns false when the key is already
// recorded and has not expired.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		s.sweep(now)
	}

	if deadline, ok := s.deadlines[key]; ok && now.Before(deadline) {
		return false, nil
	}
	s.deadlines[key] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.deadlines, key)
	s.mu.Unlock()
	return nil
}

// Close is a no-op; the store holds no background resources.
func (s *InMemoryIdempotencyStore) Close() error { return nil }

// Size returns the number of recorded keys, expired ones included until the next sweep.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deadlines)
}

// sweep drops expired keys. Caller holds mu.
func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	for key, deadline := range s.deadlines {
		if !now.Before(deadline) {
			delete(s.deadlines, key)
		}
	}
	s.lastSweep = now
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
