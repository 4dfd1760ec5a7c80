package repo

import (
	"context"
	"time"

	"livestream-pipeline/ddd/domain/entity"
)

type LivestreamRepository interface {
	// GetLivestream 不存在时返回 nil, nil
	GetLivestream(ctx context.Context, id string) (*entity.LivestreamEntity, error)
	// FindTranscriptionCandidates 已开始、在 maxAge 内、未删除、有录像且没有进行中/已完成转写的直播
	FindTranscriptionCandidates(ctx context.Context, now time.Time, maxAge time.Duration, limit int) ([]*entity.LivestreamEntity, error)
}
