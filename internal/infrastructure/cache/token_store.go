package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTokenPrefix = "pos:izettle:token:"

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// InMemoryTokenStore caches access tokens in process memory
type InMemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]entry
}

// NewInMemoryTokenStore creates an empty token store
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{tokens: make(map[string]entry)}
}

// Get returns a cached token that has not expired
func (s *InMemoryTokenStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[key]
	if !ok {
		return "", false, nil
	}
	if e.expired(time.Now()) {
		delete(s.tokens, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores a token for ttl
func (s *InMemoryTokenStore) Set(_ context.Context, key, token string, ttl time.Duration) error {
	s.mu.Lock()
	s.tokens[key] = entry{value: token, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete drops a cached token
func (s *InMemoryTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.tokens, key)
	s.mu.Unlock()
	return nil
}

// RedisTokenStore caches access tokens in Redis so instances share them
type RedisTokenStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisTokenStore creates a token store on an existing Redis client
func NewRedisTokenStore(client redis.UniversalClient, keyPrefix string) *RedisTokenStore {
	if keyPrefix == "" {
		keyPrefix = defaultTokenPrefix
	}
	return &RedisTokenStore{client: client, keyPrefix: keyPrefix}
}

// Get returns a cached token
func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	token, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	return token, true, nil
}

// Set stores a token for ttl
func (s *RedisTokenStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Delete drops a cached token
func (s *RedisTokenStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.keyPrefix+key).Err()
}
