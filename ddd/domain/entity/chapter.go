package entity

import (
	"fmt"
	"math"
	"time"
)

// chapterTolerance 秒，用于判断重叠与覆盖
const chapterTolerance = 1.0

// Chapter 直播章节
type Chapter struct {
	ID           string    `json:"id,omitempty"`
	LivestreamID string    `json:"livestreamId,omitempty"`
	ChapterIndex int       `json:"chapterIndex"`
	Title        string    `json:"title" validate:"required,max=255"`
	Summary      string    `json:"summary" validate:"required"`
	StartSec     float64   `json:"startSec" validate:"gte=0"`
	EndSec       float64   `json:"endSec" validate:"gtfield=StartSec"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// ValidateChapters 检查章节集合的顺序、重叠与覆盖范围，返回违规描述；不拒绝数据
func ValidateChapters(chapters []*Chapter, duration float64) []string {
	var violations []string
	if len(chapters) == 0 {
		return violations
	}
	for i, c := range chapters {
		if c.StartSec < 0 || c.EndSec < 0 {
			violations = append(violations, fmt.Sprintf("chapter %d has negative bounds [%.1f, %.1f]", i, c.StartSec, c.EndSec))
		}
		if c.StartSec >= c.EndSec {
			violations = append(violations, fmt.Sprintf("chapter %d starts at or after its end [%.1f, %.1f]", i, c.StartSec, c.EndSec))
		}
		if i == 0 {
			continue
		}
		prev := chapters[i-1]
		if c.StartSec < prev.StartSec {
			violations = append(violations, fmt.Sprintf("chapter %d is out of order", i))
		}
		if c.StartSec < prev.EndSec-chapterTolerance {
			violations = append(violations, fmt.Sprintf("chapter %d overlaps chapter %d by %.1fs", i, i-1, prev.EndSec-c.StartSec))
		} else if c.StartSec > prev.EndSec+chapterTolerance {
			violations = append(violations, fmt.Sprintf("gap of %.1fs between chapter %d and %d", c.StartSec-prev.EndSec, i-1, i))
		}
	}
	if first := chapters[0]; first.StartSec > chapterTolerance {
		violations = append(violations, fmt.Sprintf("first chapter starts at %.1fs instead of 0", first.StartSec))
	}
	if duration > 0 {
		last := chapters[len(chapters)-1]
		if math.Abs(duration-last.EndSec) > chapterTolerance {
			violations = append(violations, fmt.Sprintf("last chapter ends at %.1fs but transcript lasts %.1fs", last.EndSec, duration))
		}
	}
	return violations
}
