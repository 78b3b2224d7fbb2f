package lease

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"averon/internal/shared/logger"
)

func setupLease(t *testing.T) (*RedisLease, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log := logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRedisLease(client, 30*time.Second, log), mr
}

func TestRedisLease_AcquireRelease(t *testing.T) {
	lease, _ := setupLease(t)
	ctx := context.Background()

	ok, err := lease.Acquire(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lease.Acquire(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	// A different server's lease is independent.
	ok, err = lease.Acquire(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, lease.Release(ctx, 1))
	ok, err = lease.Acquire(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok, "released lease must be acquirable again")
}

func TestRedisLease_ExpiresAfterTTL(t *testing.T) {
	lease, mr := setupLease(t)
	ctx := context.Background()

	ok, err := lease.Acquire(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	ok, err = lease.Acquire(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok, "expired lease must be acquirable by the next pass")
}

func TestNoopLease(t *testing.T) {
	lease := NewNoopLease()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := lease.Acquire(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.NoError(t, lease.Release(ctx, 1))
}
