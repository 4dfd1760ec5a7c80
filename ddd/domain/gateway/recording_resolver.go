package gateway

import (
	"context"

	"livestream-pipeline/ddd/domain/entity"
)

// RecordingResolver 解析直播录像的可访问地址
type RecordingResolver interface {
	ResolveRecordingURL(ctx context.Context, livestream *entity.LivestreamEntity) (string, error)
}
