package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"livestream-pipeline/ddd/infrastructure/database/po"
)

type LivestreamDAO struct {
	db *gorm.DB
}

func NewLivestreamDAO(db *gorm.DB) *LivestreamDAO {
	return &LivestreamDAO{db: db}
}

// FindByID 软删除的直播视为不存在
func (d *LivestreamDAO) FindByID(ctx context.Context, id string) (*po.Livestream, error) {
	var row po.Livestream
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindWithoutStage 在 [from, to) 内开始、有录像、且指定阶段不处于 excludedStates 的直播，最近的优先
func (d *LivestreamDAO) FindWithoutStage(ctx context.Context, stage string, excludedStates []string,
	from, to time.Time, limit int) ([]*po.Livestream, error) {
	var rows []*po.Livestream
	query := d.db.WithContext(ctx).
		Model(&po.Livestream{}).
		Joins("LEFT JOIN livestream_processing_statuses s ON s.livestream_id = livestreams.id AND s.stage = ?", stage).
		Where("livestreams.start_at >= ? AND livestreams.start_at < ?", from, to).
		Where("livestreams.recording_token IS NOT NULL AND livestreams.recording_token <> ''").
		Where("(s.id IS NULL OR s.state NOT IN ?)", excludedStates).
		Order("livestreams.start_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
