package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChaptersAcceptsContiguousCoverage(t *testing.T) {
	chapters := []*Chapter{
		{Title: "Intro", StartSec: 0, EndSec: 120},
		{Title: "Q&A", StartSec: 120, EndSec: 300.5},
	}
	assert.Empty(t, ValidateChapters(chapters, 300))
}

func TestValidateChaptersReportsViolations(t *testing.T) {
	chapters := []*Chapter{
		{Title: "Late start", StartSec: 30, EndSec: 200},
		{Title: "Overlap", StartSec: 150, EndSec: 250},
		{Title: "Gap", StartSec: 400, EndSec: 390},
	}
	violations := ValidateChapters(chapters, 900)

	assert.Len(t, violations, 5)
	assert.Contains(t, violations, "chapter 1 overlaps chapter 0 by 50.0s")
	assert.Contains(t, violations, "chapter 2 starts at or after its end [400.0, 390.0]")
	assert.Contains(t, violations, "gap of 150.0s between chapter 1 and 2")
	assert.Contains(t, violations, "first chapter starts at 30.0s instead of 0")
	assert.Contains(t, violations, "last chapter ends at 390.0s but transcript lasts 900.0s")
}

func TestTranscriptionResultPreview(t *testing.T) {
	r := &TranscriptionResult{Transcript: "héllo world"}
	assert.Equal(t, "héllo", r.Preview(5))
	assert.Equal(t, "héllo world", r.Preview(500))
	assert.Empty(t, r.Preview(0))
}

func TestEffectiveDurationFallsBackToParagraphs(t *testing.T) {
	r := &TranscriptionResult{Paragraphs: []Paragraph{{Start: 0, End: 10}, {Start: 10, End: 42}}}
	assert.Equal(t, 42.0, r.EffectiveDuration())
	r.Duration = 50
	assert.Equal(t, 50.0, r.EffectiveDuration())
}
