package convertor

import (
	"sort"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/infrastructure/database/po"
)

type StatsConvertor struct{}

func NewStatsConvertor() *StatsConvertor {
	return &StatsConvertor{}
}

// IncrementsToPO 展开为计数行，跳过零增量；按键排序以固定加锁顺序
func (c *StatsConvertor) IncrementsToPO(increments []entity.StatsIncrement) []*po.StatsCounter {
	var rows []*po.StatsCounter
	for _, inc := range increments {
		for path, delta := range inc.Deltas {
			if delta == 0 {
				continue
			}
			rows = append(rows, &po.StatsCounter{
				RootType: inc.RootType,
				RootID:   inc.RootID,
				Path:     path,
				Value:    delta,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RootType != rows[j].RootType {
			return rows[i].RootType < rows[j].RootType
		}
		if rows[i].RootID != rows[j].RootID {
			return rows[i].RootID < rows[j].RootID
		}
		return rows[i].Path < rows[j].Path
	})
	return rows
}

func (c *StatsConvertor) ToRollup(rootType, rootID string, rows []*po.StatsCounter) *entity.StatsRollup {
	rollup := entity.NewStatsRollup(rootType, rootID)
	for _, row := range rows {
		rollup.Set(row.Path, row.Value)
	}
	return rollup
}
