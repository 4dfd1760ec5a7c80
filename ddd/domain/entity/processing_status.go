package entity

import (
	"time"

	"livestream-pipeline/ddd/domain/vo"
)

// ProcessingStatusEntity 直播在某一阶段的处理状态
type ProcessingStatusEntity struct {
	livestreamID string
	stage        vo.Stage
	state        vo.ProcessingState
	retryCount   int
	nextRetryAt  *time.Time
	errorMessage *string
	metadata     map[string]interface{}
	updatedAt    time.Time
}

func NewProcessingStatusEntity(livestreamID string, stage vo.Stage, state vo.ProcessingState, retryCount int,
	nextRetryAt *time.Time, errorMessage *string, metadata map[string]interface{}, updatedAt time.Time) *ProcessingStatusEntity {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &ProcessingStatusEntity{
		livestreamID: livestreamID,
		stage:        stage,
		state:        state,
		retryCount:   retryCount,
		nextRetryAt:  nextRetryAt,
		errorMessage: errorMessage,
		metadata:     metadata,
		updatedAt:    updatedAt,
	}
}

func (e *ProcessingStatusEntity) LivestreamID() string             { return e.livestreamID }
func (e *ProcessingStatusEntity) Stage() vo.Stage                  { return e.stage }
func (e *ProcessingStatusEntity) State() vo.ProcessingState        { return e.state }
func (e *ProcessingStatusEntity) RetryCount() int                  { return e.retryCount }
func (e *ProcessingStatusEntity) NextRetryAt() *time.Time          { return e.nextRetryAt }
func (e *ProcessingStatusEntity) ErrorMessage() *string            { return e.errorMessage }
func (e *ProcessingStatusEntity) Metadata() map[string]interface{} { return e.metadata }
func (e *ProcessingStatusEntity) UpdatedAt() time.Time             { return e.updatedAt }

// Provider 元数据中的供应商名
func (e *ProcessingStatusEntity) Provider() string {
	if v, ok := e.metadata["provider"].(string); ok {
		return v
	}
	return ""
}

// IsStale 超过 window 未更新
func (e *ProcessingStatusEntity) IsStale(now time.Time, window time.Duration) bool {
	if window <= 0 || e.updatedAt.IsZero() {
		return false
	}
	return now.Sub(e.updatedAt) > window
}

// BlocksNewAttempt 单飞判断：进行中，或失败但仍有重试次数（说明有重试循环仍在等待）
func (e *ProcessingStatusEntity) BlocksNewAttempt(maxRetries int) bool {
	if e.state.IsInProgress() {
		return true
	}
	return e.state.IsFailed() && e.retryCount < maxRetries
}

// StatusUpdate 状态的部分更新，nil 字段保持不变
type StatusUpdate struct {
	State             vo.ProcessingState
	RetryCount        *int
	NextRetryAt       *time.Time
	ClearNextRetryAt  bool
	ErrorMessage      *string
	ClearErrorMessage bool
}
