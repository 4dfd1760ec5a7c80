package lock

import (
	"context"
	"errors"
	"time"

	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/pkg/redisclient"
)

// RedisLocker 基于 SETNX 的跨实例互斥
type RedisLocker struct {
	client *redisclient.Client
}

func NewRedisLocker(client *redisclient.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (gateway.Lease, error) {
	held, err := l.client.TryLock(ctx, key, ttl)
	if errors.Is(err, redisclient.ErrLockHeld) {
		return nil, gateway.ErrLockHeld
	}
	if err != nil {
		return nil, err
	}
	return &redisLease{lock: held}, nil
}

type redisLease struct {
	lock *redisclient.Lock
}

func (l *redisLease) Refresh(ctx context.Context) error {
	err := l.lock.Refresh(ctx)
	if errors.Is(err, redisclient.ErrLockLost) {
		return gateway.ErrLockLost
	}
	return err
}

func (l *redisLease) Release(ctx context.Context) error {
	return l.lock.Release(ctx)
}
