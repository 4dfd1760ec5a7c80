package component

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestream-pipeline/ddd/application/cqe"
	"livestream-pipeline/ddd/application/dto"
	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/pkg/errno"
)

const createdEvent = `{
  "EventName": "s3:ObjectCreated:Put",
  "Key": "livestreams/transcriptions/livestreams/ls%2042/transcription.json",
  "Records": [
    {"eventName": "s3:ObjectCreated:Put", "s3": {"bucket": {"name": "livestreams"}, "object": {"key": "transcriptions%2Flivestreams%2Fls%2042%2Ftranscription.json"}}},
    {"eventName": "s3:ObjectCreated:Put", "s3": {"bucket": {"name": "livestreams"}, "object": {"key": "recordings%2Flivestreams%2Fls-9%2Ftok.mp4"}}},
    {"eventName": "s3:ObjectRemoved:Delete", "s3": {"bucket": {"name": "livestreams"}, "object": {"key": "transcriptions%2Flivestreams%2Fls-7%2Ftranscription.json"}}}
  ]
}`

func TestCreatedObjectKeys(t *testing.T) {
	keys, err := CreatedObjectKeys([]byte(createdEvent))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"transcriptions/livestreams/ls 42/transcription.json",
		"recordings/livestreams/ls-9/tok.mp4",
	}, keys)

	_, err = CreatedObjectKeys([]byte("not json"))
	assert.ErrorIs(t, err, errDecode)
}

type stubPipelineApp struct {
	mu        sync.Mutex
	triggered []string
	err       error
}

func (s *stubPipelineApp) TriggerTranscription(context.Context, *cqe.TriggerCqe) error { return nil }

func (s *stubPipelineApp) TriggerChapterization(_ context.Context, req *cqe.TriggerCqe) ([]*dto.ChapterDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggered = append(s.triggered, req.LivestreamID)
	return nil, s.err
}

func (s *stubPipelineApp) GetStatus(context.Context, string) (*dto.LivestreamStatusDTO, error) {
	return nil, nil
}

func (s *stubPipelineApp) ListChapters(context.Context, string) ([]*dto.ChapterDTO, error) {
	return nil, nil
}

func TestTranscriptFinalizedHandler(t *testing.T) {
	app := &stubPipelineApp{}
	handle := newTranscriptFinalizedHandler(app)

	require.NoError(t, handle(context.Background(), kafka.Message{Value: []byte(createdEvent)}))
	assert.Equal(t, []string{"ls 42"}, app.triggered)

	// 章节化失败只记录日志，不阻塞 offset
	app.err = errno.New(errno.ErrNoChapters, "", nil)
	assert.NoError(t, handle(context.Background(), kafka.Message{Value: []byte(createdEvent)}))
}

type stubStatsApp struct {
	changes []*cqe.UserLivestreamChangeCqe
	err     error
}

func (s *stubStatsApp) HandleUserLivestreamChange(_ context.Context, req *cqe.UserLivestreamChangeCqe) error {
	s.changes = append(s.changes, req)
	return s.err
}

func (s *stubStatsApp) ComputeIncrements(*cqe.UserLivestreamChangeCqe) []entity.StatsIncrement {
	return nil
}

func (s *stubStatsApp) GetRollup(context.Context, string, string) (*entity.StatsRollup, error) {
	return nil, nil
}

func TestUserLivestreamChangeHandler(t *testing.T) {
	app := &stubStatsApp{}
	handle := newUserLivestreamChangeHandler(app)

	msg := kafka.Message{
		Topic:     "user-livestream-changes",
		Partition: 2,
		Offset:    17,
		Key:       []byte("ls-1"),
		Value:     []byte(`{"groupId":"g-1","new":{"userId":"u-1","registered":"2026-03-01T09:00:00Z"}}`),
	}
	require.NoError(t, handle(context.Background(), msg))
	require.Len(t, app.changes, 1)
	assert.Equal(t, "user-livestream-changes/2/17", app.changes[0].EventID)
	assert.Equal(t, "ls-1", app.changes[0].LivestreamID)
	assert.Equal(t, "g-1", app.changes[0].GroupID)
	assert.NotNil(t, app.changes[0].New.Registered)
	assert.Nil(t, app.changes[0].Old)

	require.NoError(t, handle(context.Background(), kafka.Message{
		Key:   []byte("ls-1"),
		Value: []byte(`{"eventId":"evt-9","new":{"userId":"u-1","registered":"2026-03-01T09:00:00Z"}}`),
	}))
	assert.Equal(t, "evt-9", app.changes[1].EventID)

	err := handle(context.Background(), kafka.Message{Key: []byte("ls-1"), Value: []byte(`{}`)})
	assert.ErrorIs(t, err, errDecode)
}

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeReader) snapshot() ([]int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.committed...), f.closed
}

// 处理失败默认原地重试，后面的 offset 不会在失败消息之前提交
func TestConsumeLoopRetriesFailedMessageBeforeCommittingLater(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("bad")},
		{Offset: 3, Value: []byte("fail")},
		{Offset: 4, Value: []byte("ok")},
	}}
	var (
		mu      sync.Mutex
		handled []int64
		delays  []time.Duration
	)
	failuresLeft := 2
	loop := &consumeLoop{
		name:   "test",
		reader: reader,
		handle: func(_ context.Context, msg kafka.Message) error {
			mu.Lock()
			defer mu.Unlock()
			handled = append(handled, msg.Offset)
			switch string(msg.Value) {
			case "bad":
				return errDecode
			case "fail":
				if failuresLeft > 0 {
					failuresLeft--
					return errors.New("db down")
				}
			}
			return nil
		},
		sleep: func(_ context.Context, d time.Duration) error {
			mu.Lock()
			defer mu.Unlock()
			delays = append(delays, d)
			return nil
		},
	}

	require.NoError(t, loop.Start(context.Background()))
	require.Eventually(t, func() bool {
		committed, _ := reader.snapshot()
		return len(committed) == 4
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, loop.Stop())

	committed, closed := reader.snapshot()
	assert.Equal(t, []int64{1, 2, 3, 4}, committed)
	assert.True(t, closed)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{1, 2, 3, 3, 3, 4}, handled)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestConsumeLoopDoesNotCommitFailedMessageOnShutdown(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("fail")},
		{Offset: 3, Value: []byte("ok")},
	}}
	retrying := make(chan struct{}, 1)
	loop := &consumeLoop{
		name:   "test",
		reader: reader,
		handle: func(_ context.Context, msg kafka.Message) error {
			if string(msg.Value) == "fail" {
				return errors.New("db down")
			}
			return nil
		},
		sleep: func(ctx context.Context, _ time.Duration) error {
			select {
			case retrying <- struct{}{}:
			default:
			}
			<-ctx.Done()
			return ctx.Err()
		},
	}

	require.NoError(t, loop.Start(context.Background()))
	select {
	case <-retrying:
	case <-time.After(2 * time.Second):
		t.Fatal("failed message was not retried")
	}
	require.NoError(t, loop.Stop())

	committed, closed := reader.snapshot()
	assert.Equal(t, []int64{1}, committed)
	assert.True(t, closed)
}

func TestConsumeLoopSkipsFailedMessageWhenConfigured(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("fail")},
		{Offset: 2, Value: []byte("ok")},
	}}
	calls := 0
	var mu sync.Mutex
	loop := &consumeLoop{
		name:   "test",
		reader: reader,
		handle: func(_ context.Context, msg kafka.Message) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if string(msg.Value) == "fail" {
				return errors.New("db down")
			}
			return nil
		},
		policy: commitPolicy{OnProcessError: true},
		sleep: func(context.Context, time.Duration) error {
			t.Error("skipped message must not be retried")
			return nil
		},
	}

	require.NoError(t, loop.Start(context.Background()))
	require.Eventually(t, func() bool {
		committed, _ := reader.snapshot()
		return len(committed) == 2
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, loop.Stop())

	committed, _ := reader.snapshot()
	assert.Equal(t, []int64{1, 2}, committed)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}
