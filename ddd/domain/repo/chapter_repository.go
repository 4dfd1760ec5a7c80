package repo

import (
	"context"

	"livestream-pipeline/ddd/domain/entity"
)

type ChapterRepository interface {
	DeleteChapters(ctx context.Context, livestreamID string) error
	InsertChapters(ctx context.Context, chapters []*entity.Chapter) error
	// ListChapters 按 chapterIndex 升序
	ListChapters(ctx context.Context, livestreamID string) ([]*entity.Chapter, error)
}
