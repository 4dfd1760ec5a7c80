package service

import (
	"fmt"
	"strings"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/gateway"
)

var languageNames = map[string]string{
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"nl": "Dutch",
	"pt": "Portuguese",
}

// BuildChapterPrompt 生成章节化提示：输出语言与转写语言一致，正文按段落带时间戳
func BuildChapterPrompt(result *entity.TranscriptionResult) gateway.ChapterPrompt {
	language := "the same language as the transcript"
	if code := strings.ToLower(strings.TrimSpace(result.Language)); code != "" {
		base := strings.SplitN(code, "-", 2)[0]
		if name, ok := languageNames[base]; ok {
			language = fmt.Sprintf("%s (%s)", name, code)
		} else {
			language = code
		}
	}

	system := fmt.Sprintf(`You split livestream transcripts into chapters.
Write every title and summary in %s.
Respond with a JSON array only. Each element must have exactly these keys:
"title" (string), "startSec" (number), "endSec" (number), "summary" (string).`, language)

	duration := result.EffectiveDuration()

	var b strings.Builder
	b.WriteString("Split the following livestream transcript into chapters.\n\n")
	b.WriteString("Requirements:\n")
	b.WriteString("- Chapters are in chronological order.\n")
	b.WriteString("- Chapters do not overlap: every chapter starts where the previous one ends.\n")
	fmt.Fprintf(&b, "- Together the chapters cover the whole livestream, from 0 to %.0f seconds.\n", duration)
	b.WriteString("- Titles are short and describe the topic of the chapter.\n")
	b.WriteString("- Summaries are one to three sentences.\n")
	b.WriteString("- startSec and endSec are seconds from the start of the livestream.\n\n")
	b.WriteString("Transcript:\n")
	for _, p := range result.Paragraphs {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%s - %s] %s\n", FormatTimestamp(p.Start), FormatTimestamp(p.End), text)
	}
	if len(result.Paragraphs) == 0 && result.Transcript != "" {
		b.WriteString(result.Transcript)
		b.WriteString("\n")
	}

	return gateway.ChapterPrompt{System: system, User: b.String()}
}

// FormatTimestamp mm:ss，超过一小时为 h:mm:ss
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
