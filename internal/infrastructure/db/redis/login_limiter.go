package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLockoutWindow = 15 * time.Minute

// LimiterConfig bounds failed logins per username. MaxAttempts <= 0 disables
// throttling.
type LimiterConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// LoginLimiter counts failed logins per username in Redis.
// Key format: login_failures:<username>, expiring Window after the first
// failure of a burst. Later failures do not extend the window.
type LoginLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client, cfg LimiterConfig) *LoginLimiter {
	window := cfg.Window
	if window <= 0 {
		window = defaultLockoutWindow
	}
	return &LoginLimiter{client: client, max: cfg.MaxAttempts, window: window}
}

// Allowed reports whether username may attempt another login.
func (l *LoginLimiter) Allowed(ctx context.Context, username string) (bool, error) {
	if l.max <= 0 {
		return true, nil
	}
	n, err := l.client.Get(ctx, l.key(username)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("login limiter check: %w", err)
	}
	return n < l.max, nil
}

// RecordFailure increments the failure counter. The key is created with its
// expiry in the same transaction, so a counter never exists without a window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, username string) error {
	if l.max <= 0 {
		return nil
	}
	key := l.key(username)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, l.window)
		pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login limiter record: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) error {
	if l.max <= 0 {
		return nil
	}
	return l.client.Del(ctx, l.key(username)).Err()
}

func (l *LoginLimiter) key(username string) string {
	return "login_failures:" + username
}
