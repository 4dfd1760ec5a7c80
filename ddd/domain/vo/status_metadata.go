package vo

// StatusMetadata 各状态的类型化元数据，持久化时转换为松散的 map 并与已有字段合并
type StatusMetadata interface {
	ToMap() map[string]interface{}
}

// InProgressMetadata 开始处理时记录供应商
type InProgressMetadata struct {
	Provider string
}

func (m InProgressMetadata) ToMap() map[string]interface{} {
	return map[string]interface{}{"provider": m.Provider}
}

// TranscriptionCompletedMetadata 转写完成
type TranscriptionCompletedMetadata struct {
	Provider           string
	FilePath           string
	TranscriptPreview  string
	Confidence         float64
	Language           string
	LanguageConfidence float64
	Duration           float64
}

func (m TranscriptionCompletedMetadata) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"provider":           m.Provider,
		"filePath":           m.FilePath,
		"transcriptPreview":  m.TranscriptPreview,
		"confidence":         m.Confidence,
		"language":           m.Language,
		"languageConfidence": m.LanguageConfidence,
		"duration":           m.Duration,
	}
}

// ChapterizationCompletedMetadata 章节化完成
type ChapterizationCompletedMetadata struct {
	Provider       string
	ChapterCount   int
	TranscriptPath string
}

func (m ChapterizationCompletedMetadata) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"provider":       m.Provider,
		"chapterCount":   m.ChapterCount,
		"transcriptPath": m.TranscriptPath,
	}
}

// FailedMetadata 失败时记录第几次尝试
type FailedMetadata struct {
	Provider string
	Attempt  int
}

func (m FailedMetadata) ToMap() map[string]interface{} {
	return map[string]interface{}{"provider": m.Provider, "attempt": m.Attempt}
}
