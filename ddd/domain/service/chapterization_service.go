package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/ddd/domain/repo"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/pkg/bulkwriter"
	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/logger"
)

// ChapterizationService 章节化编排，只尝试一次，重试交给 LLM 客户端
type ChapterizationService interface {
	ProcessChapterization(ctx context.Context, livestreamID string) ([]*entity.Chapter, error)
}

type ChapterizationOptions struct {
	MaxRetries int
	ChunkSize  int
	LockTTL    time.Duration
}

type ChapterizationDeps struct {
	Client              gateway.ChapterizationClient
	StatusRepo          repo.StatusRepository
	TranscriptionStatus repo.StatusRepository
	ChapterRepo         repo.ChapterRepository
	Store               gateway.ObjectStore
	Locker              gateway.Locker
	NewID               func() string
}

type chapterizationServiceImpl struct {
	deps ChapterizationDeps
	opts ChapterizationOptions
}

func NewChapterizationService(deps ChapterizationDeps, opts ChapterizationOptions) ChapterizationService {
	if deps.Locker == nil {
		deps.Locker = gateway.NoopLocker{}
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = bulkwriter.DefaultChunkSize
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 15 * time.Minute
	}
	return &chapterizationServiceImpl{deps: deps, opts: opts}
}

func (s *chapterizationServiceImpl) ProcessChapterization(ctx context.Context, livestreamID string) ([]*entity.Chapter, error) {
	if livestreamID == "" {
		return nil, errno.New(errno.ErrMissingParam, "livestreamId", nil)
	}

	lease, err := s.deps.Locker.TryLock(ctx, StageLockKey(vo.StageChapterization, livestreamID), s.opts.LockTTL)
	if errors.Is(err, gateway.ErrLockHeld) {
		return nil, errno.New(errno.ErrAlreadyInProgress, "chapterization of "+livestreamID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire chapterization lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warnf("Release chapterization lock failed livestream_id=%s error=%v", livestreamID, err)
		}
	}()

	transcription, err := s.deps.TranscriptionStatus.GetStatus(ctx, livestreamID)
	if err != nil {
		return nil, fmt.Errorf("get transcription status: %w", err)
	}
	if transcription == nil {
		return nil, errno.New(errno.ErrTranscriptionRequired, livestreamID, nil)
	}

	transcriptPath := vo.TranscriptObjectPath(livestreamID)
	provider := s.deps.Client.Provider()
	if err := s.deps.StatusRepo.Initiate(ctx, livestreamID, provider); err != nil {
		return nil, fmt.Errorf("initiate chapterization status: %w", err)
	}
	logger.Infof("Chapterization started livestream_id=%s provider=%s", livestreamID, provider)

	chapters, err := s.run(ctx, livestreamID, transcriptPath)
	if err != nil {
		msg := err.Error()
		if uerr := s.deps.StatusRepo.UpdateStatus(context.WithoutCancel(ctx), livestreamID, entity.StatusUpdate{
			State:        vo.StateChapterizationFailed,
			ErrorMessage: &msg,
		}, vo.FailedMetadata{Provider: provider, Attempt: 1}); uerr != nil {
			logger.Warnf("Record chapterization failure failed livestream_id=%s error=%v", livestreamID, uerr)
		}
		logger.Errorf("Chapterization failed livestream_id=%s error=%v", livestreamID, err)
		return nil, err
	}

	if err := s.deps.StatusRepo.UpdateStatus(ctx, livestreamID, entity.StatusUpdate{
		State:             vo.StateChapterizationCompleted,
		ClearErrorMessage: true,
	}, vo.ChapterizationCompletedMetadata{
		Provider:       provider,
		ChapterCount:   len(chapters),
		TranscriptPath: transcriptPath,
	}); err != nil {
		return nil, fmt.Errorf("mark chapterization completed: %w", err)
	}

	logger.Info("Chapterization completed", map[string]interface{}{
		"livestream_id": livestreamID,
		"provider":      provider,
		"chapter_count": len(chapters),
	})
	return chapters, nil
}

func (s *chapterizationServiceImpl) run(ctx context.Context, livestreamID, transcriptPath string) ([]*entity.Chapter, error) {
	var result entity.TranscriptionResult
	if err := s.deps.Store.ReadJSON(ctx, transcriptPath, &result); err != nil {
		if errors.Is(err, gateway.ErrObjectNotFound) {
			return nil, errno.New(errno.ErrTranscriptNotFound, transcriptPath, nil)
		}
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	prompt := BuildChapterPrompt(&result)
	chapters, err := s.deps.Client.GenerateChapters(ctx, prompt, s.opts.MaxRetries)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, errno.New(errno.ErrNoChapters, livestreamID, nil)
	}

	for _, v := range entity.ValidateChapters(chapters, result.EffectiveDuration()) {
		logger.Warnf("Chapter validation livestream_id=%s violation=%q", livestreamID, v)
	}

	if err := s.saveChapters(ctx, livestreamID, chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

// saveChapters 先删除旧章节，再分批写入，Close 返回前保证全部落库
func (s *chapterizationServiceImpl) saveChapters(ctx context.Context, livestreamID string, chapters []*entity.Chapter) error {
	if err := s.deps.ChapterRepo.DeleteChapters(ctx, livestreamID); err != nil {
		return fmt.Errorf("delete chapters: %w", err)
	}

	writer := bulkwriter.New(s.opts.ChunkSize, s.deps.ChapterRepo.InsertChapters)
	for i, c := range chapters {
		c.ID = s.deps.NewID()
		c.LivestreamID = livestreamID
		c.ChapterIndex = i
		if err := writer.Add(ctx, c); err != nil {
			return fmt.Errorf("insert chapters: %w", err)
		}
	}
	if err := writer.Close(ctx); err != nil {
		return fmt.Errorf("insert chapters: %w", err)
	}
	return nil
}
