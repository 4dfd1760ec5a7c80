package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/logger"
)

// SleepFunc 可被取消的等待
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep 等待 d 或直到 ctx 结束
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StageLockKey 每个直播每个阶段一把锁
func StageLockKey(stage vo.Stage, livestreamID string) string {
	return fmt.Sprintf("pipeline:%s:%s", stage, livestreamID)
}

// refreshLease 每个长步骤之前续期。锁已丢失时返回 ErrLockNotAcquired，
// 此时其他实例可能已接手，调用方不得再写状态；Redis 暂时不可用只告警
func refreshLease(ctx context.Context, lease gateway.Lease, stage vo.Stage, livestreamID string) error {
	err := lease.Refresh(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, gateway.ErrLockLost) {
		logger.Errorf("Lock lost, abandoning run stage=%s livestream_id=%s", stage, livestreamID)
		return errno.New(errno.ErrLockNotAcquired, fmt.Sprintf("%s of %s", stage, livestreamID), err)
	}
	logger.Warnf("Refresh lock failed stage=%s livestream_id=%s error=%v", stage, livestreamID, err)
	return nil
}
