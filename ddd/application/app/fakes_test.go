package app

import (
	"context"
	"sync"
	"time"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/pkg/errno"
)

type fakeLivestreamRepo struct {
	byID       map[string]*entity.LivestreamEntity
	candidates []*entity.LivestreamEntity
	findErr    error
	lastLimit  int
	lastMaxAge time.Duration
}

func (f *fakeLivestreamRepo) GetLivestream(_ context.Context, id string) (*entity.LivestreamEntity, error) {
	if ls, ok := f.byID[id]; ok {
		return ls, nil
	}
	for _, ls := range f.candidates {
		if ls.ID() == id {
			return ls, nil
		}
	}
	return nil, nil
}

func (f *fakeLivestreamRepo) FindTranscriptionCandidates(_ context.Context, _ time.Time, maxAge time.Duration, limit int) ([]*entity.LivestreamEntity, error) {
	f.lastLimit = limit
	f.lastMaxAge = maxAge
	if f.findErr != nil {
		return nil, f.findErr
	}
	if len(f.candidates) > limit {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

// tokenResolver 返回 https://rec/{id}/{token}
type tokenResolver struct{}

func (tokenResolver) ResolveRecordingURL(_ context.Context, ls *entity.LivestreamEntity) (string, error) {
	if ls.RecordingToken() == "" {
		return "", errno.New(errno.ErrRecordingTokenMissing, ls.ID(), nil)
	}
	return "https://rec/" + ls.ID() + "/" + ls.RecordingToken(), nil
}

type fakeTranscriptionService struct {
	mu    sync.Mutex
	calls []string
	urls  []string
	errs  map[string]error
	// onCall 模拟耗时，例如推进 miniredis 时钟
	onCall func(livestreamID string)
}

func (f *fakeTranscriptionService) ProcessTranscription(_ context.Context, livestreamID, audioURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(livestreamID)
	}
	f.calls = append(f.calls, livestreamID)
	f.urls = append(f.urls, audioURL)
	return f.errs[livestreamID]
}

type fakeChapterizationService struct {
	chapters []*entity.Chapter
	err      error
}

func (f *fakeChapterizationService) ProcessChapterization(context.Context, string) ([]*entity.Chapter, error) {
	return f.chapters, f.err
}

type heldLocker struct{}

func (heldLocker) TryLock(context.Context, string, time.Duration) (gateway.Lease, error) {
	return nil, gateway.ErrLockHeld
}

type lostLease struct {
	refreshes int
	loseAt    int
}

func (l *lostLease) Refresh(context.Context) error {
	l.refreshes++
	if l.refreshes >= l.loseAt {
		return gateway.ErrLockLost
	}
	return nil
}

func (l *lostLease) Release(context.Context) error { return nil }

type leaseLocker struct {
	lease gateway.Lease
}

func (s leaseLocker) TryLock(context.Context, string, time.Duration) (gateway.Lease, error) {
	return s.lease, nil
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

type fakeStatsRepo struct {
	applied [][]entity.StatsIncrement
	seen    map[string]bool
	err     error
}

func (f *fakeStatsRepo) ApplyIncrements(_ context.Context, eventID string, increments []entity.StatsIncrement) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if eventID != "" {
		if f.seen == nil {
			f.seen = map[string]bool{}
		}
		if f.seen[eventID] {
			return false, nil
		}
		f.seen[eventID] = true
	}
	f.applied = append(f.applied, increments)
	return true, nil
}

func (f *fakeStatsRepo) GetRollup(_ context.Context, rootType, rootID string) (*entity.StatsRollup, error) {
	r := entity.NewStatsRollup(rootType, rootID)
	r.Set("generalStats.numberOfParticipants", 4)
	return r, nil
}

func livestream(id, token string) *entity.LivestreamEntity {
	return entity.NewLivestreamEntity(id, "", "title "+id, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), token)
}
