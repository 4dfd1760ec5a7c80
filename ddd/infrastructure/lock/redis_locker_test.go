package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/pkg/redisclient"
)

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cli.Close() })

	locker := NewRedisLocker(redisclient.Wrap(cli))
	ctx := context.Background()

	release, err := locker.TryLock(ctx, "pipeline:transcription:ls-1", time.Minute)
	require.NoError(t, err)

	_, err = locker.TryLock(ctx, "pipeline:transcription:ls-1", time.Minute)
	assert.ErrorIs(t, err, gateway.ErrLockHeld)

	require.NoError(t, release.Release(ctx))
	release2, err := locker.TryLock(ctx, "pipeline:transcription:ls-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release2.Release(ctx))
}

func TestRedisLockerRefreshMapsLost(t *testing.T) {
	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cli.Close() })

	locker := NewRedisLocker(redisclient.Wrap(cli))
	ctx := context.Background()

	lease, err := locker.TryLock(ctx, "pipeline:batch:transcription", time.Minute)
	require.NoError(t, err)
	require.NoError(t, lease.Refresh(ctx))

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, lease.Refresh(ctx), gateway.ErrLockLost)
}
