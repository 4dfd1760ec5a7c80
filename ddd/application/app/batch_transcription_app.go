package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"livestream-pipeline/ddd/application/dto"
	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/ddd/domain/repo"
	"livestream-pipeline/ddd/domain/service"
	"livestream-pipeline/ddd/infrastructure/database/persistence"
	"livestream-pipeline/pkg/assert"
	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/logger"
)

// BatchLockKey 多副本之间只有一个批处理在跑
const BatchLockKey = "pipeline:batch:transcription"

var (
	singleBatchTranscriptionApp BatchTranscriptionApp
	onceBatchTranscriptionApp   sync.Once
)

// BatchTranscriptionApp 定时批量转写，逐个串行处理并在两项之间限速
type BatchTranscriptionApp interface {
	RunBatch(ctx context.Context) (*dto.BatchSummary, error)
}

type BatchOptions struct {
	Size   int
	MaxAge time.Duration
	Pacing time.Duration
	// LockTTL 每项之间续期，需覆盖一项的最坏耗时
	LockTTL time.Duration
}

type BatchDeps struct {
	Livestreams   repo.LivestreamRepository
	Resolver      gateway.RecordingResolver
	Transcription service.TranscriptionService
	Locker        gateway.Locker
	Sleep         service.SleepFunc
	Now           func() time.Time
}

type batchTranscriptionAppImpl struct {
	deps BatchDeps
	opts BatchOptions
}

func DefaultBatchTranscriptionApp() BatchTranscriptionApp {
	assert.NotCircular()
	onceBatchTranscriptionApp.Do(func() {
		cfg := mustConfig()
		b := cfg.Pipeline.Batch
		singleBatchTranscriptionApp = NewBatchTranscriptionAppWith(BatchDeps{
			Livestreams:   persistence.NewLivestreamRepository(),
			Resolver:      defaultRecordingResolver(),
			Transcription: DefaultTranscriptionService(),
			Locker:        defaultLocker(),
		}, BatchOptions{
			Size:    b.Size,
			MaxAge:  b.MaxAge,
			Pacing:  b.Pacing,
			LockTTL: batchLockTTL(cfg),
		})
	})
	assert.NotNil(singleBatchTranscriptionApp)
	return singleBatchTranscriptionApp
}

func NewBatchTranscriptionAppWith(deps BatchDeps, opts BatchOptions) BatchTranscriptionApp {
	if deps.Locker == nil {
		deps.Locker = gateway.NoopLocker{}
	}
	if deps.Sleep == nil {
		deps.Sleep = service.ContextSleep
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.Size <= 0 {
		opts.Size = 30
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 2 * 365 * 24 * time.Hour
	}
	if opts.Pacing < 0 {
		opts.Pacing = 0
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Hour
	}
	return &batchTranscriptionAppImpl{deps: deps, opts: opts}
}

func (a *batchTranscriptionAppImpl) RunBatch(ctx context.Context) (*dto.BatchSummary, error) {
	lease, err := a.deps.Locker.TryLock(ctx, BatchLockKey, a.opts.LockTTL)
	if errors.Is(err, gateway.ErrLockHeld) {
		return nil, errno.New(errno.ErrLockNotAcquired, BatchLockKey, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warnf("Release batch lock failed error=%v", err)
		}
	}()

	started := a.deps.Now()
	candidates, err := a.deps.Livestreams.FindTranscriptionCandidates(ctx, started, a.opts.MaxAge, a.opts.Size)
	if err != nil {
		return nil, errno.New(errno.ErrDatabase, "query transcription candidates", err)
	}
	logger.Info("Batch transcription started", map[string]interface{}{"candidates": len(candidates)})

	summary := &dto.BatchSummary{Total: len(candidates)}
	var runErr error
	for i, ls := range candidates {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			if runErr = a.refresh(ctx, lease); runErr != nil {
				break
			}
		}
		err := a.processOne(ctx, ls.ID())
		switch {
		case err == nil:
			summary.Succeeded++
		case errors.Is(err, errno.ErrAlreadyInProgress):
			summary.Skipped++
			logger.Infof("Batch item skipped livestream_id=%s reason=%v", ls.ID(), err)
		default:
			summary.Failed++
			summary.Failures = append(summary.Failures, dto.BatchFailure{LivestreamID: ls.ID(), Error: err.Error()})
			logger.Error("Batch item failed", map[string]interface{}{"livestream_id": ls.ID(), "error": err.Error()})
		}
		if i < len(candidates)-1 && a.opts.Pacing > 0 {
			if err := a.deps.Sleep(ctx, a.opts.Pacing); err != nil {
				break
			}
		}
	}

	summary.Elapsed = a.deps.Now().Sub(started)
	logger.Info("Batch transcription finished", map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
		"elapsed":   summary.Elapsed.String(),
	})
	if runErr != nil {
		return summary, runErr
	}
	return summary, ctx.Err()
}

// refresh 锁丢失时中止批处理，避免与另一副本的批处理并行
func (a *batchTranscriptionAppImpl) refresh(ctx context.Context, lease gateway.Lease) error {
	err := lease.Refresh(ctx)
	if errors.Is(err, gateway.ErrLockLost) {
		logger.Errorf("Batch lock lost, stopping batch key=%s", BatchLockKey)
		return errno.New(errno.ErrLockNotAcquired, BatchLockKey, err)
	}
	if err != nil {
		logger.Warnf("Refresh batch lock failed error=%v", err)
	}
	return nil
}

func (a *batchTranscriptionAppImpl) processOne(ctx context.Context, livestreamID string) error {
	audioURL, err := resolveRecording(ctx, a.deps.Livestreams, a.deps.Resolver, livestreamID)
	if err != nil {
		return err
	}
	return a.deps.Transcription.ProcessTranscription(ctx, livestreamID, audioURL)
}
