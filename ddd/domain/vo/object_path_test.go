package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscriptObjectPathRoundTrip(t *testing.T) {
	path := TranscriptObjectPath("ls-42")
	assert.Equal(t, "transcriptions/livestreams/ls-42/transcription.json", path)

	id, ok := ParseTranscriptObjectPath(path)
	assert.True(t, ok)
	assert.Equal(t, "ls-42", id)
}

func TestParseTranscriptObjectPathIgnoresOtherKeys(t *testing.T) {
	for _, key := range []string{
		"",
		"recordings/livestreams/ls-1/abc.mp4",
		"transcriptions/livestreams/ls-1/other.json",
		"transcriptions/livestreams//transcription.json",
		"transcriptions/livestreams/a/b/transcription.json",
		"bucket/transcriptions/livestreams/ls-1/transcription.json",
	} {
		_, ok := ParseTranscriptObjectPath(key)
		assert.False(t, ok, key)
	}
}
