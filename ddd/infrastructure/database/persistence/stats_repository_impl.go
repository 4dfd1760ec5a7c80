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

type statsRepositoryImpl struct {
	dao *dao.StatsCounterDAO
	cvt *convertor.StatsConvertor
}

func NewStatsRepository() repo.StatsRepository {
	return NewStatsRepositoryWithDB(resource.DefaultMysqlResource().MainDB())
}

func NewStatsRepositoryWithDB(db *gorm.DB) repo.StatsRepository {
	return &statsRepositoryImpl{dao: dao.NewStatsCounterDAO(db), cvt: convertor.NewStatsConvertor()}
}

// ApplyIncrements 所有聚合根的增量与事件记录在同一事务内提交
func (r *statsRepositoryImpl) ApplyIncrements(ctx context.Context, eventID string, increments []entity.StatsIncrement) (bool, error) {
	rows := r.cvt.IncrementsToPO(increments)
	if len(rows) == 0 {
		return true, nil
	}
	applied := true
	err := r.dao.Transaction(ctx, func(tx *dao.StatsCounterDAO) error {
		if eventID != "" {
			fresh, err := tx.MarkApplied(ctx, eventID)
			if err != nil {
				return err
			}
			if !fresh {
				applied = false
				return nil
			}
		}
		return tx.Increment(ctx, rows)
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *statsRepositoryImpl) GetRollup(ctx context.Context, rootType, rootID string) (*entity.StatsRollup, error) {
	rows, err := r.dao.ListByRoot(ctx, rootType, rootID)
	if err != nil {
		return nil, err
	}
	return r.cvt.ToRollup(rootType, rootID, rows), nil
}
