package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/repo"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/ddd/infrastructure/database/convertor"
	"livestream-pipeline/ddd/infrastructure/database/dao"
	"livestream-pipeline/internal/resource"
)

type livestreamRepositoryImpl struct {
	dao *dao.LivestreamDAO
	cvt *convertor.LivestreamConvertor
}

func NewLivestreamRepository() repo.LivestreamRepository {
	return NewLivestreamRepositoryWithDB(resource.DefaultMysqlResource().MainDB())
}

func NewLivestreamRepositoryWithDB(db *gorm.DB) repo.LivestreamRepository {
	return &livestreamRepositoryImpl{dao: dao.NewLivestreamDAO(db), cvt: convertor.NewLivestreamConvertor()}
}

func (r *livestreamRepositoryImpl) GetLivestream(ctx context.Context, id string) (*entity.LivestreamEntity, error) {
	row, err := r.dao.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.cvt.ToEntity(row), nil
}

func (r *livestreamRepositoryImpl) FindTranscriptionCandidates(ctx context.Context, now time.Time, maxAge time.Duration, limit int) ([]*entity.LivestreamEntity, error) {
	excluded := []string{
		vo.StateTranscribing.String(),
		vo.StateTranscriptionCompleted.String(),
	}
	rows, err := r.dao.FindWithoutStage(ctx, vo.StageTranscription.String(), excluded, now.Add(-maxAge), now, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.LivestreamEntity, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.cvt.ToEntity(row))
	}
	return out, nil
}
