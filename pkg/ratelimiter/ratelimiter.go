package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitError is returned when a user repeats an action inside its window.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Limiter allows one action per user per window. A nil store or a zero window
// disables it.
type Limiter struct {
	rdb    redis.Cmdable
	action string
	window time.Duration
}

func New(rdb redis.Cmdable, action string, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, action: action, window: window}
}

func (l *Limiter) enabled() bool {
	return l != nil && l.rdb != nil && l.window > 0
}

func (l *Limiter) key(userID uuid.UUID) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), l.action)
}

// Acquire claims the window for userID. It returns a *RateLimitError when the
// window is already held.
func (l *Limiter) Acquire(ctx context.Context, userID uuid.UUID) error {
	if !l.enabled() {
		return nil
	}

	wasSet, err := l.rdb.SetNX(ctx, l.key(userID), "locked", l.window).Result()
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, l.key(userID)).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}

	return &RateLimitError{
		Message:    fmt.Sprintf("too many %s requests, retry in %.0fs", l.action, ttl.Seconds()),
		RetryAfter: ttl,
	}
}

// Release frees the window early, used when the guarded action failed.
func (l *Limiter) Release(ctx context.Context, userID uuid.UUID) error {
	if !l.enabled() {
		return nil
	}
	return l.rdb.Del(ctx, l.key(userID)).Err()
}
