package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/ddd/domain/vo"
)

type statusRow struct {
	state        vo.ProcessingState
	retryCount   int
	nextRetryAt  *time.Time
	errorMessage *string
	metadata     map[string]interface{}
	updatedAt    time.Time
}

// memoryStatusRepo 内存状态仓储，记录每次更新以便断言
type memoryStatusRepo struct {
	mu      sync.Mutex
	stage   vo.Stage
	rows    map[string]*statusRow
	updates []entity.StatusUpdate
	now     func() time.Time
}

func newMemoryStatusRepo(stage vo.Stage, now func() time.Time) *memoryStatusRepo {
	return &memoryStatusRepo{stage: stage, rows: map[string]*statusRow{}, now: now}
}

func (r *memoryStatusRepo) Stage() vo.Stage { return r.stage }

func (r *memoryStatusRepo) GetStatus(_ context.Context, id string) (*entity.ProcessingStatusEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return entity.NewProcessingStatusEntity(id, r.stage, row.state, row.retryCount, row.nextRetryAt,
		row.errorMessage, row.metadata, row.updatedAt), nil
}

func (r *memoryStatusRepo) UpdateStatus(_ context.Context, id string, u entity.StatusUpdate, md vo.StatusMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.row(id)
	r.updates = append(r.updates, u)
	if u.State != "" {
		row.state = u.State
	}
	if u.RetryCount != nil {
		row.retryCount = *u.RetryCount
	}
	if u.ClearNextRetryAt {
		row.nextRetryAt = nil
	} else if u.NextRetryAt != nil {
		t := *u.NextRetryAt
		row.nextRetryAt = &t
	}
	if u.ClearErrorMessage {
		row.errorMessage = nil
	} else if u.ErrorMessage != nil {
		msg := *u.ErrorMessage
		row.errorMessage = &msg
	}
	if md != nil {
		for k, v := range md.ToMap() {
			row.metadata[k] = v
		}
	}
	row.updatedAt = r.now()
	return nil
}

func (r *memoryStatusRepo) Initiate(ctx context.Context, id, provider string) error {
	zero := 0
	return r.UpdateStatus(ctx, id, entity.StatusUpdate{
		State:             r.stage.InProgressState(),
		RetryCount:        &zero,
		ClearNextRetryAt:  true,
		ClearErrorMessage: true,
	}, vo.InProgressMetadata{Provider: provider})
}

func (r *memoryStatusRepo) seed(id string, row statusRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.metadata == nil {
		row.metadata = map[string]interface{}{}
	}
	r.rows[id] = &row
}

func (r *memoryStatusRepo) snapshot(id string) statusRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.rows[id]
}

func (r *memoryStatusRepo) row(id string) *statusRow {
	row, ok := r.rows[id]
	if !ok {
		row = &statusRow{state: vo.StateIdle, metadata: map[string]interface{}{}}
		r.rows[id] = row
	}
	return row
}

// memoryStore 以 JSON 字节保存对象
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	writeFn func(path string) error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Exists(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok, nil
}

func (s *memoryStore) ReadJSON(_ context.Context, path string, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[path]
	if !ok {
		return gateway.ErrObjectNotFound
	}
	return json.Unmarshal(b, out)
}

func (s *memoryStore) WriteJSON(_ context.Context, path string, v interface{}) error {
	if s.writeFn != nil {
		if err := s.writeFn(path); err != nil {
			return err
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = b
	return nil
}

type mockTranscriptionClient struct {
	calls        int
	transcribeFn func(ctx context.Context, audioURL string) (*entity.TranscriptionResult, error)
}

func (m *mockTranscriptionClient) Provider() string { return "deepgram" }

func (m *mockTranscriptionClient) TranscribeAudio(ctx context.Context, audioURL string) (*entity.TranscriptionResult, error) {
	m.calls++
	return m.transcribeFn(ctx, audioURL)
}

type mockChapterizationClient struct {
	calls      int
	lastPrompt gateway.ChapterPrompt
	generateFn func(ctx context.Context, prompt gateway.ChapterPrompt, maxRetries int) ([]*entity.Chapter, error)
}

func (m *mockChapterizationClient) Provider() string { return "claude" }

func (m *mockChapterizationClient) GenerateChapters(ctx context.Context, prompt gateway.ChapterPrompt, maxRetries int) ([]*entity.Chapter, error) {
	m.calls++
	m.lastPrompt = prompt
	return m.generateFn(ctx, prompt, maxRetries)
}

type mockPublisher struct {
	events []gateway.TranscriptionCompletedEvent
}

func (m *mockPublisher) PublishTranscriptionCompleted(_ context.Context, e gateway.TranscriptionCompletedEvent) error {
	m.events = append(m.events, e)
	return nil
}

// heldLocker 模拟锁已被其他实例持有
type heldLocker struct{}

func (heldLocker) TryLock(context.Context, string, time.Duration) (gateway.Lease, error) {
	return nil, gateway.ErrLockHeld
}

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

type memoryChapterRepo struct {
	ops      []string
	chapters map[string][]*entity.Chapter
	insertFn func(chapters []*entity.Chapter) error
}

func newMemoryChapterRepo() *memoryChapterRepo {
	return &memoryChapterRepo{chapters: map[string][]*entity.Chapter{}}
}

func (r *memoryChapterRepo) DeleteChapters(_ context.Context, id string) error {
	r.ops = append(r.ops, "delete")
	delete(r.chapters, id)
	return nil
}

func (r *memoryChapterRepo) InsertChapters(_ context.Context, chapters []*entity.Chapter) error {
	r.ops = append(r.ops, "insert")
	if r.insertFn != nil {
		if err := r.insertFn(chapters); err != nil {
			return err
		}
	}
	for _, c := range chapters {
		r.chapters[c.LivestreamID] = append(r.chapters[c.LivestreamID], c)
	}
	return nil
}

func (r *memoryChapterRepo) ListChapters(_ context.Context, id string) ([]*entity.Chapter, error) {
	return r.chapters[id], nil
}
