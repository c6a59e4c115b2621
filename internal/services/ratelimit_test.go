package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLoginLimiter(client), mr
}

func TestLoginLimiterAllowsThenBlocks(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		ok, _, err := limiter.Check(ctx, "alice@example.rw")
		require.NoError(t, err)
		require.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, _, err := limiter.Check(ctx, "alice@example.rw")
	require.NoError(t, err)
	require.False(t, ok)

	// Another email is unaffected.
	ok, _, err = limiter.Check(ctx, "bob@example.rw")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoginLimiterResetClearsCounter(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i <= maxLoginAttempts; i++ {
		limiter.Check(ctx, "carol@example.rw")
	}
	ok, _, err := limiter.Check(ctx, "carol@example.rw")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, limiter.Reset(ctx, "carol@example.rw"))

	ok, _, err = limiter.Check(ctx, "carol@example.rw")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoginLimiterWindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i <= maxLoginAttempts; i++ {
		limiter.Check(ctx, "dave@example.rw")
	}
	ok, _, err := limiter.Check(ctx, "dave@example.rw")
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(loginWindow)

	ok, _, err = limiter.Check(ctx, "dave@example.rw")
	require.NoError(t, err)
	require.True(t, ok)
}

// The retry hint tracks the remaining window, not a fixed constant.
func TestRetryAfterTracksRemainingWindow(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		limiter.Check(ctx, "erin@example.rw")
	}

	_, retryAfter, err := limiter.Check(ctx, "erin@example.rw")
	require.NoError(t, err)
	require.Equal(t, loginWindow, retryAfter)

	elapsed := 5 * time.Minute
	mr.FastForward(elapsed)

	_, retryAfter, err = limiter.Check(ctx, "erin@example.rw")
	require.NoError(t, err)
	require.Equal(t, loginWindow-elapsed, retryAfter)
}
