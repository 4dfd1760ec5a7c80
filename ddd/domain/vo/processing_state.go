package vo

// ProcessingState 处理状态
type ProcessingState string

const (
	StateIdle                    ProcessingState = "idle"
	StateTranscribing            ProcessingState = "transcribing"
	StateTranscriptionCompleted  ProcessingState = "transcription-completed"
	StateTranscriptionFailed     ProcessingState = "transcription-failed"
	StateGeneratingChapter       ProcessingState = "generating-chapter"
	StateChapterizationCompleted ProcessingState = "chapterization-completed"
	StateChapterizationFailed    ProcessingState = "chapterization-failed"
)

// IsValid 检查状态是否有效
func (s ProcessingState) IsValid() bool {
	switch s {
	case StateIdle, StateTranscribing, StateTranscriptionCompleted, StateTranscriptionFailed,
		StateGeneratingChapter, StateChapterizationCompleted, StateChapterizationFailed:
		return true
	default:
		return false
	}
}

func (s ProcessingState) String() string {
	return string(s)
}

func (s ProcessingState) IsInProgress() bool {
	return s == StateTranscribing || s == StateGeneratingChapter
}

func (s ProcessingState) IsCompleted() bool {
	return s == StateTranscriptionCompleted || s == StateChapterizationCompleted
}

func (s ProcessingState) IsFailed() bool {
	return s == StateTranscriptionFailed || s == StateChapterizationFailed
}

// IsIdle 空状态同样视为 idle
func (s ProcessingState) IsIdle() bool {
	return s == StateIdle || s == ""
}
