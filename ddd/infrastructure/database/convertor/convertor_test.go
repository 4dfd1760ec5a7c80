package convertor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/ddd/infrastructure/database/po"
)

func TestStatusUpdateToPO_OnlyTouchedColumns(t *testing.T) {
	c := NewStatusConvertor()
	retry := 2
	next := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	msg := "timeout"

	row, cols, merge := c.UpdateToPO("ls-1", vo.StageTranscription, entity.StatusUpdate{
		State:        vo.StateTranscriptionFailed,
		RetryCount:   &retry,
		NextRetryAt:  &next,
		ErrorMessage: &msg,
	}, vo.FailedMetadata{Provider: "deepgram", Attempt: 2})

	assert.Equal(t, []string{"state", "retry_count", "next_retry_at", "error_message"}, cols)
	assert.True(t, merge)
	assert.Equal(t, "transcription", row.Stage)
	assert.Equal(t, "transcription-failed", row.State)
	assert.Equal(t, 2, row.RetryCount)
	require.NotNil(t, row.NextRetryAt)
	assert.Equal(t, next, *row.NextRetryAt)
	assert.Equal(t, "deepgram", row.Metadata["provider"])
}

func TestStatusUpdateToPO_ClearsNullableColumns(t *testing.T) {
	c := NewStatusConvertor()
	row, cols, merge := c.UpdateToPO("ls-1", vo.StageChapterization, entity.StatusUpdate{
		State:             vo.StateChapterizationCompleted,
		ClearNextRetryAt:  true,
		ClearErrorMessage: true,
	}, nil)

	assert.Equal(t, []string{"state", "next_retry_at", "error_message"}, cols)
	assert.False(t, merge)
	assert.Nil(t, row.NextRetryAt)
	assert.Nil(t, row.ErrorMessage)
}

func TestStatsIncrementsToPO(t *testing.T) {
	c := NewStatsConvertor()
	rows := c.IncrementsToPO([]entity.StatsIncrement{
		{RootType: "livestream", RootID: "ls-1", Deltas: map[string]int64{
			"generalStats.numberOfParticipants":        1,
			"universityStats.tum.numberOfParticipants": 1,
			"generalStats.numberOfRegistrations":       0,
		}},
		{RootType: "group", RootID: "g-1", Deltas: map[string]int64{"generalStats.numberOfParticipants": -1}},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "group", rows[0].RootType)
	assert.Equal(t, int64(-1), rows[0].Value)
	assert.Equal(t, "generalStats.numberOfParticipants", rows[1].Path)
	assert.Equal(t, "universityStats.tum.numberOfParticipants", rows[2].Path)
}

func TestStatsToRollup(t *testing.T) {
	rollup := NewStatsConvertor().ToRollup("livestream", "ls-1", []*po.StatsCounter{
		{Path: "generalStats.numberOfParticipants", Value: 4},
		{Path: "countryStats.de.numberOfParticipants", Value: 3},
	})
	assert.Equal(t, int64(4), rollup.General["numberOfParticipants"])
	assert.Equal(t, int64(3), rollup.Dimensions["countryStats"]["de"]["numberOfParticipants"])
}
