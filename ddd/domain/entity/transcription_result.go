package entity

// Sentence 句子级时间戳
type Sentence struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Paragraph 段落，按时间顺序排列
type Paragraph struct {
	Start     float64    `json:"start"`
	End       float64    `json:"end"`
	Sentences []Sentence `json:"sentences"`
}

// Text 段落全文
func (p Paragraph) Text() string {
	out := make([]byte, 0, 256)
	for i, s := range p.Sentences {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, s.Text...)
	}
	return string(out)
}

// TranscriptionResult 转写结果，以 JSON 形式保存在对象存储
type TranscriptionResult struct {
	Transcript         string      `json:"transcript"`
	Language           string      `json:"language"`
	LanguageConfidence float64     `json:"languageConfidence"`
	Confidence         float64     `json:"confidence"`
	Duration           float64     `json:"duration"`
	Paragraphs         []Paragraph `json:"paragraphs"`
}

// Preview 截取前 n 个字符
func (r *TranscriptionResult) Preview(n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(r.Transcript)
	if len(runes) <= n {
		return r.Transcript
	}
	return string(runes[:n])
}

// EffectiveDuration duration 缺失时使用最后一个段落的结束时间
func (r *TranscriptionResult) EffectiveDuration() float64 {
	if r.Duration > 0 {
		return r.Duration
	}
	if n := len(r.Paragraphs); n > 0 {
		return r.Paragraphs[n-1].End
	}
	return 0
}
