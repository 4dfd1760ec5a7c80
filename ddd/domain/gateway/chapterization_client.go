package gateway

import (
	"context"

	"livestream-pipeline/ddd/domain/entity"
)

// ChapterPrompt 章节化的系统提示与用户提示
type ChapterPrompt struct {
	System string
	User   string
}

// ChapterizationClient LLM 供应商，maxRetries 为客户端内部的有界重试次数
type ChapterizationClient interface {
	Provider() string
	GenerateChapters(ctx context.Context, prompt ChapterPrompt, maxRetries int) ([]*entity.Chapter, error)
}
