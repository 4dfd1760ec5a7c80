package app

import (
	"context"
	"sync"

	"livestream-pipeline/ddd/application/cqe"
	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/repo"
	"livestream-pipeline/ddd/domain/stats"
	"livestream-pipeline/ddd/infrastructure/database/persistence"
	"livestream-pipeline/pkg/assert"
	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/logger"
)

var (
	singleStatsApp StatsApp
	onceStatsApp   sync.Once
)

// StatsApp 用户-直播变更 → 直播/群组计数增量
type StatsApp interface {
	// HandleUserLivestreamChange 计算增量并在一个事务内写入
	HandleUserLivestreamChange(ctx context.Context, req *cqe.UserLivestreamChangeCqe) error
	// ComputeIncrements 只计算不写入
	ComputeIncrements(req *cqe.UserLivestreamChangeCqe) []entity.StatsIncrement
	GetRollup(ctx context.Context, rootType, rootID string) (*entity.StatsRollup, error)
}

type statsAppImpl struct {
	repo             repo.StatsRepository
	livestreamEngine *stats.Engine[stats.UserLivestream]
	groupEngine      *stats.Engine[stats.UserLivestream]
}

func DefaultStatsApp() StatsApp {
	assert.NotCircular()
	onceStatsApp.Do(func() {
		singleStatsApp = NewStatsAppWith(persistence.NewStatsRepository())
	})
	assert.NotNil(singleStatsApp)
	return singleStatsApp
}

func NewStatsAppWith(statsRepo repo.StatsRepository) StatsApp {
	return &statsAppImpl{
		repo:             statsRepo,
		livestreamEngine: stats.NewLivestreamEngine(),
		groupEngine:      stats.NewGroupEngine(),
	}
}

func (a *statsAppImpl) ComputeIncrements(req *cqe.UserLivestreamChangeCqe) []entity.StatsIncrement {
	var out []entity.StatsIncrement

	acc := stats.Accumulator{}
	a.livestreamEngine.ComputeDeltas(req.New, req.Old, acc)
	if !acc.IsEmpty() {
		out = append(out, entity.StatsIncrement{RootType: entity.RootTypeLivestream, RootID: req.LivestreamID, Deltas: acc})
	}

	if req.GroupID != "" {
		groupAcc := stats.Accumulator{}
		a.groupEngine.ComputeDeltas(req.New, req.Old, groupAcc)
		if !groupAcc.IsEmpty() {
			out = append(out, entity.StatsIncrement{RootType: entity.RootTypeGroup, RootID: req.GroupID, Deltas: groupAcc})
		}
	}
	return out
}

func (a *statsAppImpl) HandleUserLivestreamChange(ctx context.Context, req *cqe.UserLivestreamChangeCqe) error {
	if err := req.Validate(); err != nil {
		return err
	}
	increments := a.ComputeIncrements(req)
	if len(increments) == 0 {
		logger.Debugf("User livestream change without stats effect livestream_id=%s", req.LivestreamID)
		return nil
	}
	applied, err := a.repo.ApplyIncrements(ctx, req.EventID, increments)
	if err != nil {
		return errno.New(errno.ErrDatabase, "apply stats increments", err)
	}
	if !applied {
		logger.Infof("Duplicate user livestream change skipped event_id=%s livestream_id=%s", req.EventID, req.LivestreamID)
		return nil
	}
	logger.Debug("Stats increments applied", map[string]interface{}{
		"event_id":      req.EventID,
		"livestream_id": req.LivestreamID,
		"group_id":      req.GroupID,
		"rollups":       len(increments),
	})
	return nil
}

func (a *statsAppImpl) GetRollup(ctx context.Context, rootType, rootID string) (*entity.StatsRollup, error) {
	if rootID == "" {
		return nil, errno.New(errno.ErrMissingParam, "rootId", nil)
	}
	if rootType != entity.RootTypeLivestream && rootType != entity.RootTypeGroup {
		return nil, errno.New(errno.ErrInvalidParam, "rootType must be livestream or group", nil)
	}
	rollup, err := a.repo.GetRollup(ctx, rootType, rootID)
	if err != nil {
		return nil, errno.New(errno.ErrDatabase, "load stats rollup", err)
	}
	return rollup, nil
}
