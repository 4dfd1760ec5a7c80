package gateway

import (
	"context"
	"time"
)

// Lease 已持有的锁
type Lease interface {
	// Refresh 把剩余有效期重置为加锁时的 ttl；锁已过期或被他人持有时返回 ErrLockLost
	Refresh(ctx context.Context) error
	Release(ctx context.Context) error
}

// Locker 跨实例互斥；已被占用时返回 ErrLockHeld
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// NoopLocker 单实例部署或测试使用
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (Lease, error) {
	return noopLease{}, nil
}

type noopLease struct{}

func (noopLease) Refresh(context.Context) error { return nil }
func (noopLease) Release(context.Context) error { return nil }
