package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/repo"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/ddd/infrastructure/database/convertor"
	"livestream-pipeline/ddd/infrastructure/database/dao"
	"livestream-pipeline/internal/resource"
)

// statusRepositoryImpl 单个阶段的状态仓储，所有写入都是 upsert + 列级更新
type statusRepositoryImpl struct {
	stage vo.Stage
	dao   *dao.StatusDAO
	cvt   *convertor.StatusConvertor
}

func NewStatusRepository(stage vo.Stage) repo.StatusRepository {
	return NewStatusRepositoryWithDB(resource.DefaultMysqlResource().MainDB(), stage)
}

func NewStatusRepositoryWithDB(db *gorm.DB, stage vo.Stage) repo.StatusRepository {
	return &statusRepositoryImpl{stage: stage, dao: dao.NewStatusDAO(db), cvt: convertor.NewStatusConvertor()}
}

func (r *statusRepositoryImpl) Stage() vo.Stage {
	return r.stage
}

func (r *statusRepositoryImpl) GetStatus(ctx context.Context, livestreamID string) (*entity.ProcessingStatusEntity, error) {
	row, err := r.dao.FindOne(ctx, livestreamID, r.stage.String())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.cvt.ToEntity(row), nil
}

func (r *statusRepositoryImpl) UpdateStatus(ctx context.Context, livestreamID string, update entity.StatusUpdate, metadata vo.StatusMetadata) error {
	row, columns, merge := r.cvt.UpdateToPO(livestreamID, r.stage, update, metadata)
	return r.dao.Upsert(ctx, row, columns, merge)
}

func (r *statusRepositoryImpl) Initiate(ctx context.Context, livestreamID string, provider string) error {
	zero := 0
	return r.UpdateStatus(ctx, livestreamID, entity.StatusUpdate{
		State:             r.stage.InProgressState(),
		RetryCount:        &zero,
		ClearNextRetryAt:  true,
		ClearErrorMessage: true,
	}, vo.InProgressMetadata{Provider: provider})
}
