package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/marketplace/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.FromClient(client, "")
}

func newIdempotency(t *testing.T, maxRetries int) (*miniredis.Miniredis, *IdempotencyService) {
	t.Helper()
	mr, adapter := setupTestRedis(t)
	cfg := DefaultIdempotencyConfig()
	cfg.MaxRetries = maxRetries
	return mr, NewIdempotencyService(adapter, cfg)
}

func TestIdempotency_SucceedMarksProcessed(t *testing.T) {
	mr, svc := newIdempotency(t, 3)
	ctx := context.Background()

	a, err := svc.Begin(ctx, "ev-1")
	require.NoError(t, err)
	assert.False(t, a.IsRetry())
	assert.True(t, mr.Exists("notify:lock:ev-1"))

	require.NoError(t, svc.Succeed(ctx, a))
	assert.False(t, mr.Exists("notify:lock:ev-1"))

	done, err := svc.IsProcessed(ctx, "ev-1")
	require.NoError(t, err)
	assert.True(t, done)

	_, err = svc.Begin(ctx, "ev-1")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestIdempotency_LockIsExclusive(t *testing.T) {
	mr, svc := newIdempotency(t, 3)
	ctx := context.Background()

	_, err := svc.Begin(ctx, "ev-2")
	require.NoError(t, err)

	_, err = svc.Begin(ctx, "ev-2")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)

	// a crashed holder frees the event once the lock expires
	mr.FastForward(31 * time.Second)
	_, err = svc.Begin(ctx, "ev-2")
	assert.NoError(t, err)
}

func TestIdempotency_FailCountsRetries(t *testing.T) {
	_, svc := newIdempotency(t, 2)
	ctx := context.Background()

	a, err := svc.Begin(ctx, "ev-3")
	require.NoError(t, err)
	svc.Fail(ctx, a, errors.New("502"))

	n, err := svc.RetryCount(ctx, "ev-3")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a, err = svc.Begin(ctx, "ev-3")
	require.NoError(t, err)
	assert.True(t, a.IsRetry())
	svc.Fail(ctx, a, errors.New("502"))

	_, err = svc.Begin(ctx, "ev-3")
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestIdempotency_SucceedClearsRetries(t *testing.T) {
	_, svc := newIdempotency(t, 3)
	ctx := context.Background()

	a, err := svc.Begin(ctx, "ev-4")
	require.NoError(t, err)
	svc.Fail(ctx, a, errors.New("timeout"))

	a, err = svc.Begin(ctx, "ev-4")
	require.NoError(t, err)
	require.NoError(t, svc.Succeed(ctx, a))

	n, err := svc.RetryCount(ctx, "ev-4")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIdempotency_ReleaseIsIdempotent(t *testing.T) {
	mr, svc := newIdempotency(t, 3)
	ctx := context.Background()

	a, err := svc.Begin(ctx, "ev-5")
	require.NoError(t, err)
	svc.Release(ctx, a)
	svc.Release(ctx, a)
	svc.Release(ctx, nil)
	assert.False(t, mr.Exists("notify:lock:ev-5"))
}

func TestIdempotency_CorruptCounter(t *testing.T) {
	mr, svc := newIdempotency(t, 3)
	require.NoError(t, mr.Set("notify:retry:ev-6", "x"))

	_, err := svc.RetryCount(context.Background(), "ev-6")
	assert.Error(t, err)
}
