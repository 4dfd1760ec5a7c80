package dao

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"livestream-pipeline/ddd/infrastructure/database/po"
	"livestream-pipeline/pkg/logger"
)

// mergeMetadataExpr 新旧元数据按 RFC 7396 合并，未出现的键保持不变
const mergeMetadataExpr = "JSON_MERGE_PATCH(COALESCE(metadata, JSON_OBJECT()), VALUES(metadata))"

// StatusDAO 处理状态数据访问对象
type StatusDAO struct {
	db *gorm.DB
}

func NewStatusDAO(db *gorm.DB) *StatusDAO {
	return &StatusDAO{db: db}
}

// FindOne 不存在时返回 gorm.ErrRecordNotFound
func (d *StatusDAO) FindOne(ctx context.Context, livestreamID, stage string) (*po.ProcessingStatus, error) {
	var row po.ProcessingStatus
	if err := d.db.WithContext(ctx).
		Where("livestream_id = ? AND stage = ?", livestreamID, stage).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert 插入或只更新 columns 中列出的列；mergeMetadata 时元数据合并而非覆盖
func (d *StatusDAO) Upsert(ctx context.Context, row *po.ProcessingStatus, columns []string, mergeMetadata bool) error {
	cols := make([]string, 0, len(columns)+1)
	cols = append(cols, columns...)
	set := clause.AssignmentColumns(append(cols, "updated_at"))
	if mergeMetadata {
		set = append(set, clause.Assignment{
			Column: clause.Column{Name: "metadata"},
			Value:  gorm.Expr(mergeMetadataExpr),
		})
	}
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "livestream_id"}, {Name: "stage"}},
			DoUpdates: set,
		}).
		Create(row).Error
	if err != nil {
		logger.Errorf("Error upserting processing status livestream_id=%s stage=%s: %v", row.LivestreamID, row.Stage, err)
		return err
	}
	return nil
}

