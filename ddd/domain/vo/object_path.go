package vo

import (
	"fmt"
	"regexp"
)

var transcriptPathPattern = regexp.MustCompile(`^transcriptions/livestreams/([^/]+)/transcription\.json$`)

// TranscriptObjectPath 转写结果在对象存储中的路径
func TranscriptObjectPath(livestreamID string) string {
	return fmt.Sprintf("transcriptions/livestreams/%s/transcription.json", livestreamID)
}

// ParseTranscriptObjectPath 从对象路径中提取直播 ID，不匹配时返回 false
func ParseTranscriptObjectPath(key string) (string, bool) {
	m := transcriptPathPattern.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// RecordingObjectPath 录像文件路径
func RecordingObjectPath(livestreamID, token string) string {
	return fmt.Sprintf("recordings/livestreams/%s/%s.mp4", livestreamID, token)
}
