package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginWindow      = 15 * time.Minute
	maxLoginAttempts = 5
)

// LoginLimiter throttles credential attempts per email using Redis counters.
type LoginLimiter struct {
	redis *redis.Client
}

// NewLoginLimiter creates a new login limiter
func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{redis: client}
}

// Check counts an attempt and reports whether the email is over the limit.
// The window starts at the first attempt. When blocked, retryAfter is how
// much of the window remains.
func (l *LoginLimiter) Check(ctx context.Context, email string) (allowed bool, retryAfter time.Duration, err error) {
	key := fmt.Sprintf("login_attempts:%s", email)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		l.redis.Expire(ctx, key, loginWindow)
	}
	if count <= maxLoginAttempts {
		return true, 0, nil
	}

	remaining, err := l.redis.TTL(ctx, key).Result()
	if err != nil || remaining <= 0 {
		// A key without an expiry should not block forever.
		remaining = loginWindow
	}
	return false, remaining, nil
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	return l.redis.Del(ctx, fmt.Sprintf("login_attempts:%s", email)).Err()
}
