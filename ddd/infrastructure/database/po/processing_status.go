package po

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessingStatus 每个直播每个阶段一行
type ProcessingStatus struct {
	ID           uint64            `gorm:"column:id;primaryKey;autoIncrement"`
	LivestreamID string            `gorm:"column:livestream_id;size:64;not null;uniqueIndex:uk_status_livestream_stage"`
	Stage        string            `gorm:"column:stage;size:32;not null;uniqueIndex:uk_status_livestream_stage"`
	State        string            `gorm:"column:state;size:32;not null;default:idle"`
	RetryCount   int               `gorm:"column:retry_count;not null;default:0"`
	NextRetryAt  *time.Time        `gorm:"column:next_retry_at"`
	ErrorMessage *string           `gorm:"column:error_message;type:text"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata;type:json"`
	CreatedAt    time.Time         `gorm:"column:created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at"`
}

func (ProcessingStatus) TableName() string {
	return "livestream_processing_statuses"
}
