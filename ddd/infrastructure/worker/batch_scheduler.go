package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"livestream-pipeline/pkg/config"
	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/logger"
	"livestream-pipeline/pkg/manager"
	"livestream-pipeline/pkg/task"
)

// BatchRunFunc 执行一次批处理
type BatchRunFunc func(ctx context.Context) error

// BatchSchedulerPlugin 按配置周期触发批量转写，NewRunner 由启动装配注入
type BatchSchedulerPlugin struct {
	NewRunner func() BatchRunFunc
}

func (p *BatchSchedulerPlugin) Name() string {
	return "batchSchedulerComponent"
}

func (p *BatchSchedulerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	if cfg == nil || !cfg.Pipeline.Batch.Enabled {
		logger.Info("Batch scheduler disabled", nil)
		return nil
	}
	if p.NewRunner == nil {
		panic("batch scheduler runner not configured")
	}
	return NewBatchScheduler(cfg.Pipeline.Batch.Interval, p.NewRunner())
}

// BatchScheduler 把批处理挂到后台任务管理器上
type BatchScheduler struct {
	name     string
	interval time.Duration
	run      BatchRunFunc
}

func NewBatchScheduler(interval time.Duration, run BatchRunFunc) *BatchScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &BatchScheduler{name: "batchTranscription", interval: interval, run: run}
}

func (s *BatchScheduler) Start() error {
	if s.run == nil {
		return fmt.Errorf("batch scheduler %s has no runner", s.name)
	}
	task.Register(task.NewPeriodicTask(s.name, s.interval, s.Tick))
	logger.Infof("Batch scheduler registered name=%s interval=%s", s.name, s.interval)
	return nil
}

// Tick 单次调度；其他副本持有锁时静默跳过
func (s *BatchScheduler) Tick(ctx context.Context) {
	err := s.run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errno.ErrLockNotAcquired):
		logger.Infof("Batch skipped, another replica holds the lock name=%s", s.name)
	case errors.Is(err, context.Canceled):
		logger.Infof("Batch interrupted by shutdown name=%s", s.name)
	default:
		logger.Error("Batch run failed", map[string]interface{}{"name": s.name, "error": err.Error()})
	}
}

// Stop 周期任务由 task 管理器停止
func (s *BatchScheduler) Stop() error {
	return nil
}

func (s *BatchScheduler) GetName() string {
	return s.name
}
