package repo

import (
	"context"

	"livestream-pipeline/ddd/domain/entity"
)

type StatsRepository interface {
	// ApplyIncrements 在一个事务中应用所有增量，计数行不存在时创建。
	// eventID 非空时与增量同事务记录，同一事件再次到达返回 applied=false 且不写入
	ApplyIncrements(ctx context.Context, eventID string, increments []entity.StatsIncrement) (applied bool, err error)
	GetRollup(ctx context.Context, rootType, rootID string) (*entity.StatsRollup, error)
}
