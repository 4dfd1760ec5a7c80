package dao

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"livestream-pipeline/ddd/infrastructure/database/po"
)

type StatsCounterDAO struct {
	db *gorm.DB
}

func NewStatsCounterDAO(db *gorm.DB) *StatsCounterDAO {
	return &StatsCounterDAO{db: db}
}

// WithTx 绑定到事务
func (d *StatsCounterDAO) WithTx(tx *gorm.DB) *StatsCounterDAO {
	return &StatsCounterDAO{db: tx}
}

func (d *StatsCounterDAO) Transaction(ctx context.Context, fn func(tx *StatsCounterDAO) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(d.WithTx(tx))
	})
}

// Increment 计数行不存在时以 delta 为初值创建，否则原子累加
func (d *StatsCounterDAO) Increment(ctx context.Context, rows []*po.StatsCounter) error {
	if len(rows) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "root_type"}, {Name: "root_id"}, {Name: "path"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "value"}, Value: gorm.Expr("value + VALUES(value)")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("VALUES(updated_at)")},
			},
		}).
		Create(&rows).Error
}

// MarkApplied 记录事件；已存在时返回 false
func (d *StatsCounterDAO) MarkApplied(ctx context.Context, eventID string) (bool, error) {
	res := d.db.WithContext(ctx).
		Clauses(clause.Insert{Modifier: "IGNORE"}).
		Create(&po.StatsAppliedEvent{EventID: eventID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (d *StatsCounterDAO) ListByRoot(ctx context.Context, rootType, rootID string) ([]*po.StatsCounter, error) {
	var rows []*po.StatsCounter
	if err := d.db.WithContext(ctx).
		Where("root_type = ? AND root_id = ?", rootType, rootID).
		Order("path ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
