package vo

// Stage 流水线阶段，每个直播在每个阶段各有一条处理状态
type Stage string

const (
	StageTranscription  Stage = "transcription"
	StageChapterization Stage = "chapterization"
)

func (s Stage) IsValid() bool {
	return s == StageTranscription || s == StageChapterization
}

func (s Stage) String() string {
	return string(s)
}

// InProgressState 阶段对应的进行中状态
func (s Stage) InProgressState() ProcessingState {
	if s == StageChapterization {
		return StateGeneratingChapter
	}
	return StateTranscribing
}

// CompletedState 阶段对应的完成状态
func (s Stage) CompletedState() ProcessingState {
	if s == StageChapterization {
		return StateChapterizationCompleted
	}
	return StateTranscriptionCompleted
}

// FailedState 阶段对应的失败状态
func (s Stage) FailedState() ProcessingState {
	if s == StageChapterization {
		return StateChapterizationFailed
	}
	return StateTranscriptionFailed
}
