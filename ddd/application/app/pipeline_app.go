package app

import (
	"context"
	"fmt"
	"sync"

	"livestream-pipeline/ddd/application/cqe"
	"livestream-pipeline/ddd/application/dto"
	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/ddd/domain/repo"
	"livestream-pipeline/ddd/domain/service"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/ddd/infrastructure/database/persistence"
	"livestream-pipeline/pkg/assert"
	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/logger"
)

var (
	singlePipelineApp PipelineApp
	oncePipelineApp   sync.Once
)

// PipelineApp 手动触发与查询，触发接口同步阻塞到流程结束
type PipelineApp interface {
	// TriggerTranscription 解析录像地址并执行转写（含重试）
	TriggerTranscription(ctx context.Context, req *cqe.TriggerCqe) error
	// TriggerChapterization 基于已保存的转写生成章节
	TriggerChapterization(ctx context.Context, req *cqe.TriggerCqe) ([]*dto.ChapterDTO, error)
	GetStatus(ctx context.Context, livestreamID string) (*dto.LivestreamStatusDTO, error)
	ListChapters(ctx context.Context, livestreamID string) ([]*dto.ChapterDTO, error)
}

type pipelineAppImpl struct {
	livestreams    repo.LivestreamRepository
	resolver       gateway.RecordingResolver
	transcription  service.TranscriptionService
	chapterization service.ChapterizationService
	transStatus    repo.StatusRepository
	chapterStatus  repo.StatusRepository
	chapters       repo.ChapterRepository
}

func DefaultPipelineApp() PipelineApp {
	assert.NotCircular()
	oncePipelineApp.Do(func() {
		singlePipelineApp = NewPipelineAppWith(PipelineAppDeps{
			Livestreams:          persistence.NewLivestreamRepository(),
			Resolver:             defaultRecordingResolver(),
			Transcription:        DefaultTranscriptionService(),
			Chapterization:       DefaultChapterizationService(),
			TranscriptionStatus:  persistence.NewStatusRepository(vo.StageTranscription),
			ChapterizationStatus: persistence.NewStatusRepository(vo.StageChapterization),
			Chapters:             persistence.NewChapterRepository(),
		})
	})
	assert.NotNil(singlePipelineApp)
	return singlePipelineApp
}

type PipelineAppDeps struct {
	Livestreams          repo.LivestreamRepository
	Resolver             gateway.RecordingResolver
	Transcription        service.TranscriptionService
	Chapterization       service.ChapterizationService
	TranscriptionStatus  repo.StatusRepository
	ChapterizationStatus repo.StatusRepository
	Chapters             repo.ChapterRepository
}

func NewPipelineAppWith(deps PipelineAppDeps) PipelineApp {
	return &pipelineAppImpl{
		livestreams:    deps.Livestreams,
		resolver:       deps.Resolver,
		transcription:  deps.Transcription,
		chapterization: deps.Chapterization,
		transStatus:    deps.TranscriptionStatus,
		chapterStatus:  deps.ChapterizationStatus,
		chapters:       deps.Chapters,
	}
}

func (a *pipelineAppImpl) TriggerTranscription(ctx context.Context, req *cqe.TriggerCqe) error {
	if err := req.Validate(); err != nil {
		return err
	}
	audioURL, err := resolveRecording(ctx, a.livestreams, a.resolver, req.LivestreamID)
	if err != nil {
		return err
	}
	logger.Info("Manual transcription triggered", map[string]interface{}{"livestream_id": req.LivestreamID})
	return a.transcription.ProcessTranscription(ctx, req.LivestreamID, audioURL)
}

func (a *pipelineAppImpl) TriggerChapterization(ctx context.Context, req *cqe.TriggerCqe) ([]*dto.ChapterDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger.Info("Manual chapterization triggered", map[string]interface{}{"livestream_id": req.LivestreamID})
	chapters, err := a.chapterization.ProcessChapterization(ctx, req.LivestreamID)
	if err != nil {
		return nil, err
	}
	return dto.NewChapterDTOs(chapters), nil
}

func (a *pipelineAppImpl) GetStatus(ctx context.Context, livestreamID string) (*dto.LivestreamStatusDTO, error) {
	if livestreamID == "" {
		return nil, errno.New(errno.ErrMissingParam, "livestreamId", nil)
	}
	trans, err := a.transStatus.GetStatus(ctx, livestreamID)
	if err != nil {
		return nil, errno.New(errno.ErrDatabase, "load transcription status", err)
	}
	chapter, err := a.chapterStatus.GetStatus(ctx, livestreamID)
	if err != nil {
		return nil, errno.New(errno.ErrDatabase, "load chapterization status", err)
	}
	if trans == nil && chapter == nil {
		return nil, errno.New(errno.ErrNotFound, "no processing status for "+livestreamID, nil)
	}
	return &dto.LivestreamStatusDTO{
		LivestreamID:   livestreamID,
		Transcription:  dto.NewProcessingStatusDTO(trans),
		Chapterization: dto.NewProcessingStatusDTO(chapter),
	}, nil
}

func (a *pipelineAppImpl) ListChapters(ctx context.Context, livestreamID string) ([]*dto.ChapterDTO, error) {
	if livestreamID == "" {
		return nil, errno.New(errno.ErrMissingParam, "livestreamId", nil)
	}
	chapters, err := a.chapters.ListChapters(ctx, livestreamID)
	if err != nil {
		return nil, errno.New(errno.ErrDatabase, "list chapters", err)
	}
	return dto.NewChapterDTOs(chapters), nil
}

// resolveRecording 查直播并生成录像地址，手动触发与批处理共用
func resolveRecording(ctx context.Context, livestreams repo.LivestreamRepository, resolver gateway.RecordingResolver, livestreamID string) (string, error) {
	ls, err := livestreams.GetLivestream(ctx, livestreamID)
	if err != nil {
		return "", errno.New(errno.ErrDatabase, "load livestream", err)
	}
	if ls == nil {
		return "", errno.New(errno.ErrLivestreamNotFound, livestreamID, nil)
	}
	audioURL, err := resolver.ResolveRecordingURL(ctx, ls)
	if err != nil {
		return "", fmt.Errorf("resolve recording of %s: %w", livestreamID, err)
	}
	return audioURL, nil
}
