package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cli.Close() })
	return cli, mr
}

func TestTryLockIsExclusive(t *testing.T) {
	cli, _ := newTestClient(t)
	ctx := context.Background()

	release, err := cli.TryLock(ctx, "pipeline:transcription:ls-1", time.Minute)
	require.NoError(t, err)

	_, err = cli.TryLock(ctx, "pipeline:transcription:ls-1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := cli.TryLock(ctx, "pipeline:transcription:ls-2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, release.Release(ctx))
	again, err := cli.TryLock(ctx, "pipeline:transcription:ls-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestReleaseKeepsForeignLock(t *testing.T) {
	cli, mr := newTestClient(t)
	ctx := context.Background()

	release, err := cli.TryLock(ctx, "pipeline:batch", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	_, err = cli.TryLock(ctx, "pipeline:batch", time.Minute)
	require.NoError(t, err)

	require.NoError(t, release.Release(ctx))
	assert.True(t, mr.Exists("pipeline:batch"))
}

func TestRefreshExtendsTTL(t *testing.T) {
	cli, mr := newTestClient(t)
	ctx := context.Background()

	held, err := cli.TryLock(ctx, "pipeline:transcription:ls-1", 10*time.Minute)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		mr.FastForward(8 * time.Minute)
		require.NoError(t, held.Refresh(ctx))
	}
	assert.True(t, mr.Exists("pipeline:transcription:ls-1"))
	assert.Equal(t, 10*time.Minute, mr.TTL("pipeline:transcription:ls-1"))

	_, err = cli.TryLock(ctx, "pipeline:transcription:ls-1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
	require.NoError(t, held.Release(ctx))
}

func TestRefreshAfterExpiryReportsLost(t *testing.T) {
	cli, mr := newTestClient(t)
	ctx := context.Background()

	held, err := cli.TryLock(ctx, "pipeline:batch", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, held.Refresh(ctx), ErrLockLost)

	other, err := cli.TryLock(ctx, "pipeline:batch", time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, held.Refresh(ctx), ErrLockLost)
	require.NoError(t, other.Refresh(ctx))

	require.NoError(t, held.Release(ctx))
	assert.ErrorIs(t, held.Refresh(ctx), ErrLockLost)
}
