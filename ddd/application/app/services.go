package app

import (
	"sync"
	"time"

	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/ddd/domain/service"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/ddd/infrastructure/database/persistence"
	"livestream-pipeline/ddd/infrastructure/event"
	"livestream-pipeline/ddd/infrastructure/lock"
	"livestream-pipeline/ddd/infrastructure/storage"
	"livestream-pipeline/ddd/infrastructure/vendor"
	"livestream-pipeline/internal/resource"
	"livestream-pipeline/pkg/assert"
	"livestream-pipeline/pkg/config"
	"livestream-pipeline/pkg/kafka"
	"livestream-pipeline/pkg/retry"
)

// lockMargin 锁有效期在最坏耗时之外的余量
const lockMargin = 5 * time.Minute

var (
	onceTranscriptionService   sync.Once
	singleTranscriptionService service.TranscriptionService

	onceChapterizationService   sync.Once
	singleChapterizationService service.ChapterizationService
)

func mustConfig() *config.Config {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized")
	}
	return cfg
}

// transcriptionOptions 单次尝试的上限比供应商 HTTP 超时多留一分钟写对象存储
func transcriptionOptions(cfg *config.Config) service.TranscriptionOptions {
	tc := cfg.Pipeline.Transcription
	return service.TranscriptionOptions{
		MaxRetries:     tc.MaxRetries,
		Backoff:        vo.BackoffPolicy{BaseDelay: tc.BaseDelay, MaxDelay: tc.MaxDelay},
		PreviewLength:  tc.PreviewLength,
		StaleAfter:     tc.StaleAfter,
		AttemptTimeout: cfg.Vendors.Deepgram.Timeout + time.Minute,
		LockTTL:        cfg.Pipeline.Locks.TranscriptionTTL,
	}
}

// chapterizationLockTTL 覆盖 LLM 客户端内部全部重试
func chapterizationLockTTL(cfg *config.Config) time.Duration {
	cc := cfg.Pipeline.Chapterization
	worst := time.Duration(cc.MaxRetries+1)*cfg.Vendors.Anthropic.Timeout +
		time.Duration(cc.MaxRetries)*retry.DefaultMaxDelay + lockMargin
	return max(cfg.Pipeline.Locks.ChapterizationTTL, worst)
}

// batchLockTTL 至少覆盖一项转写的最坏耗时加一次限速等待，批处理在两项之间续期
func batchLockTTL(cfg *config.Config) time.Duration {
	worst := transcriptionOptions(cfg).WorstCase() + cfg.Pipeline.Batch.Pacing + lockMargin
	return max(cfg.Pipeline.Locks.BatchTTL, worst)
}

func defaultLocker() gateway.Locker {
	return lock.NewRedisLocker(resource.DefaultRedisResource().Locking())
}

func defaultObjectStore() gateway.ObjectStore {
	minioRes := resource.DefaultMinioResource()
	return storage.NewMinioObjectStore(minioRes.GetClient(), minioRes.GetBucketName())
}

func defaultRecordingResolver() gateway.RecordingResolver {
	cfg := mustConfig()
	return storage.NewPresignedRecordingResolver(resource.DefaultMinioResource().GetClient(),
		cfg.Pipeline.Recording.BucketName, cfg.Pipeline.Recording.PresignExpiry)
}

// DefaultTranscriptionService 由全局资源装配的转写编排
func DefaultTranscriptionService() service.TranscriptionService {
	assert.NotCircular()
	onceTranscriptionService.Do(func() {
		cfg := mustConfig()
		client, err := vendor.NewTranscriptionClient(cfg)
		if err != nil {
			panic(err)
		}
		var publisher gateway.EventPublisher
		if cfg.Kafka.Enabled && cfg.Kafka.Topics.TranscriptionEvents != "" {
			publisher = event.NewKafkaEventPublisher(kafka.DefaultClient(), cfg.Kafka.Topics.TranscriptionEvents)
		}
		singleTranscriptionService = service.NewTranscriptionService(service.TranscriptionDeps{
			Client:     client,
			StatusRepo: persistence.NewStatusRepository(vo.StageTranscription),
			Store:      defaultObjectStore(),
			Locker:     defaultLocker(),
			Publisher:  publisher,
		}, transcriptionOptions(cfg))
	})
	assert.NotNil(singleTranscriptionService)
	return singleTranscriptionService
}

// DefaultChapterizationService 由全局资源装配的章节化编排
func DefaultChapterizationService() service.ChapterizationService {
	assert.NotCircular()
	onceChapterizationService.Do(func() {
		cfg := mustConfig()
		client, err := vendor.NewChapterizationClient(cfg)
		if err != nil {
			panic(err)
		}
		cc := cfg.Pipeline.Chapterization
		singleChapterizationService = service.NewChapterizationService(service.ChapterizationDeps{
			Client:              client,
			StatusRepo:          persistence.NewStatusRepository(vo.StageChapterization),
			TranscriptionStatus: persistence.NewStatusRepository(vo.StageTranscription),
			ChapterRepo:         persistence.NewChapterRepository(),
			Store:               defaultObjectStore(),
			Locker:              defaultLocker(),
		}, service.ChapterizationOptions{
			MaxRetries: cc.MaxRetries,
			ChunkSize:  cc.ChunkSize,
			LockTTL:    chapterizationLockTTL(cfg),
		})
	})
	assert.NotNil(singleChapterizationService)
	return singleChapterizationService
}
