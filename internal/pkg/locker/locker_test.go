package locker

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_AcquireRelease(t *testing.T) {
	// Arrange
	ctx := context.Background()
	l := NewRedis(newRedisClient(t))

	// Act
	lease, err := l.Acquire(ctx, "otp-cleanup", time.Minute)
	require.NoError(t, err)
	_, errSecond := l.Acquire(ctx, "otp-cleanup", time.Minute)

	// Assert
	assert.ErrorIs(t, errSecond, ErrNotAcquired)
	require.NoError(t, lease.Release(ctx))
	assert.ErrorIs(t, lease.Release(ctx), ErrNotHeld)

	again, err := l.Acquire(ctx, "otp-cleanup", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestRedis_ExpiredLeaseCannotReleaseNewOwner(t *testing.T) {
	// Arrange
	ctx := context.Background()
	l := NewRedis(newRedisClient(t))

	stale, err := l.Acquire(ctx, "job", 50*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(150 * time.Millisecond)

	fresh, err := l.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)

	// Act
	errStale := stale.Release(ctx)

	// Assert
	assert.ErrorIs(t, errStale, ErrNotHeld)
	_, errBusy := l.Acquire(ctx, "job", time.Minute)
	assert.ErrorIs(t, errBusy, ErrNotAcquired)
	require.NoError(t, fresh.Release(ctx))
}

func TestNoop(t *testing.T) {
	lease, err := Noop{}.Acquire(context.Background(), "any", 0)
	require.NoError(t, err)
	assert.NoError(t, lease.Release(context.Background()))
}
