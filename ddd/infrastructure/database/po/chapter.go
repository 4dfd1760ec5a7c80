package po

import "time"

type Chapter struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	LivestreamID string    `gorm:"column:livestream_id;size:64;not null"`
	ChapterIndex int       `gorm:"column:chapter_index;not null"`
	Title        string    `gorm:"column:title;size:255;not null"`
	Summary      string    `gorm:"column:summary;type:text;not null"`
	StartSec     float64   `gorm:"column:start_sec;not null"`
	EndSec       float64   `gorm:"column:end_sec;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Chapter) TableName() string {
	return "livestream_chapters"
}
