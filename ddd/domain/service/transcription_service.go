package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/ddd/domain/repo"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/logger"
)

// TranscriptionService 转写编排：调用供应商、保存结果、失败时指数退避重试
type TranscriptionService interface {
	// ProcessTranscription 阻塞直到成功或重试耗尽
	ProcessTranscription(ctx context.Context, livestreamID, audioURL string) error
}

type TranscriptionOptions struct {
	MaxRetries    int
	Backoff       vo.BackoffPolicy
	PreviewLength int
	StaleAfter    time.Duration
	// AttemptTimeout 单次供应商调用加写入的上限，0 表示不限
	AttemptTimeout time.Duration
	// LockTTL 每次续期后的有效期，至少覆盖一次尝试或一次退避等待
	LockTTL time.Duration
}

// lockMargin 锁有效期在单步上限之外的余量
const lockMargin = 5 * time.Minute

func (o TranscriptionOptions) withDefaults() TranscriptionOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = vo.DefaultMaxRetries
	}
	if o.PreviewLength <= 0 {
		o.PreviewLength = 500
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 90 * time.Minute
	}
	if step := max(o.AttemptTimeout, o.Backoff.Delay(o.MaxRetries)) + lockMargin; o.LockTTL < step {
		o.LockTTL = step
	}
	return o
}

// WorstCase 重试全部耗尽时一次转写的最长耗时；AttemptTimeout 为 0 时只计退避
func (o TranscriptionOptions) WorstCase() time.Duration {
	o = o.withDefaults()
	total := time.Duration(o.MaxRetries+1) * o.AttemptTimeout
	for i := 0; i < o.MaxRetries; i++ {
		total += o.Backoff.Delay(i)
	}
	return total
}

type TranscriptionDeps struct {
	Client     gateway.TranscriptionClient
	StatusRepo repo.StatusRepository
	Store      gateway.ObjectStore
	Locker     gateway.Locker
	// Publisher 可选
	Publisher gateway.EventPublisher
	Sleep     SleepFunc
	Now       func() time.Time
}

type transcriptionServiceImpl struct {
	deps TranscriptionDeps
	opts TranscriptionOptions
}

func NewTranscriptionService(deps TranscriptionDeps, opts TranscriptionOptions) TranscriptionService {
	if deps.Locker == nil {
		deps.Locker = gateway.NoopLocker{}
	}
	if deps.Sleep == nil {
		deps.Sleep = ContextSleep
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &transcriptionServiceImpl{deps: deps, opts: opts.withDefaults()}
}

func (s *transcriptionServiceImpl) ProcessTranscription(ctx context.Context, livestreamID, audioURL string) error {
	if livestreamID == "" {
		return errno.New(errno.ErrMissingParam, "livestreamId", nil)
	}
	if audioURL == "" {
		return errno.New(errno.ErrMissingParam, "audioUrl", nil)
	}

	lease, err := s.deps.Locker.TryLock(ctx, StageLockKey(vo.StageTranscription, livestreamID), s.opts.LockTTL)
	if errors.Is(err, gateway.ErrLockHeld) {
		return errno.New(errno.ErrAlreadyInProgress, "transcription of "+livestreamID, nil)
	}
	if err != nil {
		return fmt.Errorf("acquire transcription lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warnf("Release transcription lock failed livestream_id=%s error=%v", livestreamID, err)
		}
	}()

	status, err := s.deps.StatusRepo.GetStatus(ctx, livestreamID)
	if err != nil {
		return fmt.Errorf("get transcription status: %w", err)
	}
	if status != nil && status.BlocksNewAttempt(s.opts.MaxRetries) {
		if !status.IsStale(s.deps.Now(), s.opts.StaleAfter) {
			return errno.New(errno.ErrAlreadyInProgress, "transcription of "+livestreamID, nil)
		}
		logger.Warnf("Stale transcription status taken over livestream_id=%s state=%s updated_at=%s",
			livestreamID, status.State(), status.UpdatedAt().Format(time.RFC3339))
	}

	provider := s.deps.Client.Provider()
	if err := s.deps.StatusRepo.Initiate(ctx, livestreamID, provider); err != nil {
		return fmt.Errorf("initiate transcription status: %w", err)
	}
	logger.Infof("Transcription started livestream_id=%s provider=%s", livestreamID, provider)

	for retryCount := 0; ; retryCount++ {
		if retryCount > 0 {
			if err := refreshLease(ctx, lease, vo.StageTranscription, livestreamID); err != nil {
				return err
			}
		}
		attemptErr := s.attempt(ctx, livestreamID, audioURL, provider)
		if attemptErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			s.recordTerminalFailure(ctx, livestreamID, provider, retryCount, "cancelled: "+attemptErr.Error())
			return attemptErr
		}

		if retryCount >= s.opts.MaxRetries {
			s.recordTerminalFailure(ctx, livestreamID, provider, retryCount, "max retries reached: "+attemptErr.Error())
			logger.Errorf("Transcription failed permanently livestream_id=%s attempts=%d error=%v",
				livestreamID, retryCount+1, attemptErr)
			return errno.Wrapf(errno.ErrMaxRetriesReached, attemptErr, "livestream=%s attempts=%d", livestreamID, retryCount+1)
		}

		if err := refreshLease(ctx, lease, vo.StageTranscription, livestreamID); err != nil {
			return err
		}
		delay := s.opts.Backoff.Delay(retryCount)
		nextRetryAt := s.deps.Now().Add(delay)
		nextCount := retryCount + 1
		msg := attemptErr.Error()
		if err := s.deps.StatusRepo.UpdateStatus(ctx, livestreamID, entity.StatusUpdate{
			State:        vo.StateTranscriptionFailed,
			RetryCount:   &nextCount,
			NextRetryAt:  &nextRetryAt,
			ErrorMessage: &msg,
		}, vo.FailedMetadata{Provider: provider, Attempt: retryCount + 1}); err != nil {
			logger.Warnf("Record transcription retry failed livestream_id=%s error=%v", livestreamID, err)
		}
		logger.Warnf("Transcription attempt failed, retrying livestream_id=%s retry=%d/%d delay=%s error=%v",
			livestreamID, nextCount, s.opts.MaxRetries, delay, attemptErr)

		if err := s.deps.Sleep(ctx, delay); err != nil {
			s.recordTerminalFailure(ctx, livestreamID, provider, nextCount, "cancelled while waiting to retry: "+msg)
			return err
		}
	}
}

// attempt 一次完整尝试：转写、写入对象存储、更新完成状态
func (s *transcriptionServiceImpl) attempt(ctx context.Context, livestreamID, audioURL, provider string) error {
	if s.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AttemptTimeout)
		defer cancel()
	}
	result, err := s.deps.Client.TranscribeAudio(ctx, audioURL)
	if err != nil {
		return err
	}
	if result == nil {
		return errno.New(errno.ErrProviderFailed, "empty transcription result", nil)
	}

	path := vo.TranscriptObjectPath(livestreamID)
	if err := s.deps.Store.WriteJSON(ctx, path, result); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	zero := 0
	if err := s.deps.StatusRepo.UpdateStatus(ctx, livestreamID, entity.StatusUpdate{
		State:             vo.StateTranscriptionCompleted,
		RetryCount:        &zero,
		ClearNextRetryAt:  true,
		ClearErrorMessage: true,
	}, vo.TranscriptionCompletedMetadata{
		Provider:           provider,
		FilePath:           path,
		TranscriptPreview:  result.Preview(s.opts.PreviewLength),
		Confidence:         result.Confidence,
		Language:           result.Language,
		LanguageConfidence: result.LanguageConfidence,
		Duration:           result.Duration,
	}); err != nil {
		return fmt.Errorf("mark transcription completed: %w", err)
	}

	logger.Info("Transcription completed", map[string]interface{}{
		"livestream_id": livestreamID,
		"provider":      provider,
		"file_path":     path,
		"language":      result.Language,
		"confidence":    result.Confidence,
	})

	if s.deps.Publisher != nil {
		event := gateway.TranscriptionCompletedEvent{
			LivestreamID: livestreamID,
			FilePath:     path,
			Provider:     provider,
			Language:     result.Language,
			CompletedAt:  s.deps.Now(),
		}
		if err := s.deps.Publisher.PublishTranscriptionCompleted(ctx, event); err != nil {
			logger.Warnf("Publish transcription completed event failed livestream_id=%s error=%v", livestreamID, err)
		}
	}
	return nil
}

func (s *transcriptionServiceImpl) recordTerminalFailure(ctx context.Context, livestreamID, provider string, retryCount int, msg string) {
	err := s.deps.StatusRepo.UpdateStatus(context.WithoutCancel(ctx), livestreamID, entity.StatusUpdate{
		State:            vo.StateTranscriptionFailed,
		RetryCount:       &retryCount,
		ClearNextRetryAt: true,
		ErrorMessage:     &msg,
	}, vo.FailedMetadata{Provider: provider, Attempt: retryCount + 1})
	if err != nil {
		logger.Warnf("Record transcription failure failed livestream_id=%s error=%v", livestreamID, err)
	}
}
