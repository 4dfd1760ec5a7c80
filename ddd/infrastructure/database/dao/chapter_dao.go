package dao

import (
	"context"

	"gorm.io/gorm"

	"livestream-pipeline/ddd/infrastructure/database/po"
	"livestream-pipeline/pkg/logger"
)

type ChapterDAO struct {
	db *gorm.DB
}

func NewChapterDAO(db *gorm.DB) *ChapterDAO {
	return &ChapterDAO{db: db}
}

func (d *ChapterDAO) DeleteByLivestream(ctx context.Context, livestreamID string) (int64, error) {
	res := d.db.WithContext(ctx).Where("livestream_id = ?", livestreamID).Delete(&po.Chapter{})
	if res.Error != nil {
		logger.Errorf("Error deleting chapters livestream_id=%s: %v", livestreamID, res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CreateBatch 一条 INSERT 写入一批章节
func (d *ChapterDAO) CreateBatch(ctx context.Context, rows []*po.Chapter) error {
	if len(rows) == 0 {
		return nil
	}
	if err := d.db.WithContext(ctx).Create(&rows).Error; err != nil {
		logger.Errorf("Error inserting %d chapters: %v", len(rows), err)
		return err
	}
	return nil
}

func (d *ChapterDAO) ListByLivestream(ctx context.Context, livestreamID string) ([]*po.Chapter, error) {
	var rows []*po.Chapter
	if err := d.db.WithContext(ctx).
		Where("livestream_id = ?", livestreamID).
		Order("chapter_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
