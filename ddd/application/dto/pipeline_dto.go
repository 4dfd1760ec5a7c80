package dto

import (
	"time"

	"livestream-pipeline/ddd/domain/entity"
)

// ProcessingStatusDTO 单个阶段的状态
type ProcessingStatusDTO struct {
	Stage        string                 `json:"stage"`
	State        string                 `json:"state"`
	RetryCount   int                    `json:"retryCount"`
	NextRetryAt  *time.Time             `json:"nextRetryAt,omitempty"`
	ErrorMessage *string                `json:"errorMessage,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

func NewProcessingStatusDTO(e *entity.ProcessingStatusEntity) *ProcessingStatusDTO {
	if e == nil {
		return nil
	}
	return &ProcessingStatusDTO{
		Stage:        e.Stage().String(),
		State:        e.State().String(),
		RetryCount:   e.RetryCount(),
		NextRetryAt:  e.NextRetryAt(),
		ErrorMessage: e.ErrorMessage(),
		Metadata:     e.Metadata(),
		UpdatedAt:    e.UpdatedAt(),
	}
}

// LivestreamStatusDTO 直播在两个阶段的状态，未开始的阶段为 null
type LivestreamStatusDTO struct {
	LivestreamID   string               `json:"livestreamId"`
	Transcription  *ProcessingStatusDTO `json:"transcription"`
	Chapterization *ProcessingStatusDTO `json:"chapterization"`
}

type ChapterDTO struct {
	ID           string  `json:"id"`
	ChapterIndex int     `json:"chapterIndex"`
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	StartSec     float64 `json:"startSec"`
	EndSec       float64 `json:"endSec"`
}

func NewChapterDTOs(chapters []*entity.Chapter) []*ChapterDTO {
	out := make([]*ChapterDTO, 0, len(chapters))
	for _, c := range chapters {
		out = append(out, &ChapterDTO{
			ID:           c.ID,
			ChapterIndex: c.ChapterIndex,
			Title:        c.Title,
			Summary:      c.Summary,
			StartSec:     c.StartSec,
			EndSec:       c.EndSec,
		})
	}
	return out
}

// BatchFailure 批处理中单个直播的失败
type BatchFailure struct {
	LivestreamID string `json:"livestreamId"`
	Error        string `json:"error"`
}

// BatchSummary 一次批量转写的结果
type BatchSummary struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures,omitempty"`
	Elapsed   time.Duration  `json:"elapsed"`
}
