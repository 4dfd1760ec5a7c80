package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestream-pipeline/ddd/application/cqe"
	"livestream-pipeline/ddd/application/dto"
	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/pkg/errno"
)

type stubPipelineApp struct {
	transcribeErr error
	chapters      []*dto.ChapterDTO
	chapterErr    error
	seen          []string
}

func (s *stubPipelineApp) TriggerTranscription(_ context.Context, req *cqe.TriggerCqe) error {
	if err := req.Validate(); err != nil {
		return err
	}
	s.seen = append(s.seen, req.LivestreamID)
	return s.transcribeErr
}

func (s *stubPipelineApp) TriggerChapterization(_ context.Context, req *cqe.TriggerCqe) ([]*dto.ChapterDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.seen = append(s.seen, req.LivestreamID)
	return s.chapters, s.chapterErr
}

func (s *stubPipelineApp) GetStatus(_ context.Context, id string) (*dto.LivestreamStatusDTO, error) {
	if id == "missing" {
		return nil, errno.New(errno.ErrNotFound, id, nil)
	}
	return &dto.LivestreamStatusDTO{LivestreamID: id}, nil
}

func (s *stubPipelineApp) ListChapters(context.Context, string) ([]*dto.ChapterDTO, error) {
	return s.chapters, nil
}

type stubStatsApp struct{}

func (stubStatsApp) HandleUserLivestreamChange(context.Context, *cqe.UserLivestreamChangeCqe) error {
	return nil
}

func (stubStatsApp) ComputeIncrements(*cqe.UserLivestreamChangeCqe) []entity.StatsIncrement {
	return nil
}

func (stubStatsApp) GetRollup(_ context.Context, rootType, rootID string) (*entity.StatsRollup, error) {
	r := entity.NewStatsRollup(rootType, rootID)
	r.Set("generalStats.numberOfRegistrations", 7)
	r.Set("universityStats.tum.numberOfRegistrations", 2)
	return r, nil
}

func newTestEngine(app *stubPipelineApp) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewPipelineController(app, stubStatsApp{}).RegisterRoutes(engine)
	return engine
}

func do(t *testing.T, engine *gin.Engine, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestTranscriptionTrigger(t *testing.T) {
	app := &stubPipelineApp{}
	engine := newTestEngine(app)

	code, body := do(t, engine, httptest.NewRequest(http.MethodGet, "/transcription?livestreamId=ls-1", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ls-1", body["livestreamId"])
	assert.NotEmpty(t, body["message"])

	req := httptest.NewRequest(http.MethodPost, "/transcription", strings.NewReader(`{"livestreamId":"ls-2"}`))
	req.Header.Set("Content-Type", "application/json")
	code, _ = do(t, engine, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"ls-1", "ls-2"}, app.seen)
}

func TestTranscriptionTriggerFailures(t *testing.T) {
	cases := []struct {
		name   string
		url    string
		err    error
		status int
	}{
		{"missing param", "/transcription", nil, http.StatusBadRequest},
		{"in progress", "/transcription?livestreamId=ls-1", errno.New(errno.ErrAlreadyInProgress, "ls-1", nil), http.StatusConflict},
		{"exhausted", "/transcription?livestreamId=ls-1", errno.New(errno.ErrMaxRetriesReached, "deepgram: 503", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(&stubPipelineApp{transcribeErr: tc.err})
			code, body := do(t, engine, httptest.NewRequest(http.MethodPost, tc.url, nil))
			assert.Equal(t, tc.status, code)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["errorMessage"])
		})
	}
}

func TestChapterizationTriggerReturnsChapters(t *testing.T) {
	app := &stubPipelineApp{chapters: []*dto.ChapterDTO{{ID: "c1", Title: "Intro", EndSec: 42}}}
	code, body := do(t, newTestEngine(app), httptest.NewRequest(http.MethodGet, "/chapterization?livestreamId=ls-1", nil))
	assert.Equal(t, http.StatusOK, code)
	chapters, ok := body["chapters"].([]interface{})
	require.True(t, ok)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Intro", chapters[0].(map[string]interface{})["title"])
}

func TestReadEndpoints(t *testing.T) {
	engine := newTestEngine(&stubPipelineApp{})

	code, _ := do(t, engine, httptest.NewRequest(http.MethodGet, "/api/v1/livestreams/missing/status", nil))
	assert.Equal(t, http.StatusNotFound, code)

	code, body := do(t, engine, httptest.NewRequest(http.MethodGet, "/api/v1/stats/group/g-1", nil))
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "g-1", data["rootId"])
	assert.Equal(t, float64(7), data["generalStats"].(map[string]interface{})["numberOfRegistrations"])
	tum := data["universityStats"].(map[string]interface{})["tum"].(map[string]interface{})
	assert.Equal(t, float64(2), tum["numberOfRegistrations"])
	assert.NotContains(t, data, "dimensions")
}
