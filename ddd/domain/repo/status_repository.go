package repo

import (
	"context"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/vo"
)

// StatusRepository 某一阶段的处理状态，更新均为字段级部分更新
type StatusRepository interface {
	Stage() vo.Stage
	// GetStatus 不存在时返回 nil, nil
	GetStatus(ctx context.Context, livestreamID string) (*entity.ProcessingStatusEntity, error)
	// UpdateStatus metadata 与已有元数据合并，可为 nil
	UpdateStatus(ctx context.Context, livestreamID string, update entity.StatusUpdate, metadata vo.StatusMetadata) error
	// Initiate 置为进行中，重试计数归零并记录供应商
	Initiate(ctx context.Context, livestreamID string, provider string) error
}
