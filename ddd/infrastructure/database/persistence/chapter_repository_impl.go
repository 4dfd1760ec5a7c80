package persistence

import (
	"context"

	"gorm.io/gorm"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/repo"
	"livestream-pipeline/ddd/infrastructure/database/convertor"
	"livestream-pipeline/ddd/infrastructure/database/dao"
	"livestream-pipeline/internal/resource"
)

type chapterRepositoryImpl struct {
	dao *dao.ChapterDAO
	cvt *convertor.ChapterConvertor
}

func NewChapterRepository() repo.ChapterRepository {
	return NewChapterRepositoryWithDB(resource.DefaultMysqlResource().MainDB())
}

func NewChapterRepositoryWithDB(db *gorm.DB) repo.ChapterRepository {
	return &chapterRepositoryImpl{dao: dao.NewChapterDAO(db), cvt: convertor.NewChapterConvertor()}
}

func (r *chapterRepositoryImpl) DeleteChapters(ctx context.Context, livestreamID string) error {
	_, err := r.dao.DeleteByLivestream(ctx, livestreamID)
	return err
}

func (r *chapterRepositoryImpl) InsertChapters(ctx context.Context, chapters []*entity.Chapter) error {
	return r.dao.CreateBatch(ctx, r.cvt.ToPOList(chapters))
}

func (r *chapterRepositoryImpl) ListChapters(ctx context.Context, livestreamID string) ([]*entity.Chapter, error) {
	rows, err := r.dao.ListByLivestream(ctx, livestreamID)
	if err != nil {
		return nil, err
	}
	return r.cvt.ToEntityList(rows), nil
}
