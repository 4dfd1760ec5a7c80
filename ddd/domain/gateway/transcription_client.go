package gateway

import (
	"context"

	"livestream-pipeline/ddd/domain/entity"
)

// TranscriptionClient 语音转写供应商
type TranscriptionClient interface {
	Provider() string
	TranscribeAudio(ctx context.Context, audioURL string) (*entity.TranscriptionResult, error)
}
