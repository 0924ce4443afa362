package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is an in-memory stand-in for the SETNX/TTL/DEL subset of redis
// used by the rate limiter. Calls to any other command panic through the
// nil embedded Cmdable.
type RedisStore struct {
	redis.Cmdable

	mu   sync.Mutex
	now  func() time.Time
	keys map[string]time.Time

	// Err, when set, is returned by every command.
	Err error
}

func NewRedisStore() *RedisStore {
	return &RedisStore{
		now:  time.Now,
		keys: make(map[string]time.Time),
	}
}

func (s *RedisStore) SetNX(_ context.Context, key string, _ interface{}, expiration time.Duration) *redis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return redis.NewBoolResult(false, s.Err)
	}
	if expiresAt, ok := s.keys[key]; ok && s.now().Before(expiresAt) {
		return redis.NewBoolResult(false, nil)
	}
	s.keys[key] = s.now().Add(expiration)
	return redis.NewBoolResult(true, nil)
}

func (s *RedisStore) TTL(_ context.Context, key string) *redis.DurationCmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return redis.NewDurationResult(0, s.Err)
	}
	expiresAt, ok := s.keys[key]
	if !ok || !s.now().Before(expiresAt) {
		return redis.NewDurationResult(-2*time.Second, nil)
	}
	return redis.NewDurationResult(expiresAt.Sub(s.now()).Round(time.Second), nil)
}

func (s *RedisStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return redis.NewIntResult(0, s.Err)
	}
	var removed int64
	for _, key := range keys {
		if _, ok := s.keys[key]; ok {
			delete(s.keys, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

// Held reports whether key is currently set.
func (s *RedisStore) Held(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.keys[key]
	return ok && s.now().Before(expiresAt)
}
