package gateway

import (
	"context"
	"time"
)

// TranscriptionCompletedEvent 转写完成事件
type TranscriptionCompletedEvent struct {
	LivestreamID string    `json:"livestreamId"`
	FilePath     string    `json:"filePath"`
	Provider     string    `json:"provider"`
	Language     string    `json:"language"`
	CompletedAt  time.Time `json:"completedAt"`
}

// EventPublisher 领域事件发布
type EventPublisher interface {
	PublishTranscriptionCompleted(ctx context.Context, event TranscriptionCompletedEvent) error
}
