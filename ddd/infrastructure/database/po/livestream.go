package po

import (
	"time"

	"gorm.io/gorm"
)

// Livestream 只读，由直播管理服务写入
type Livestream struct {
	ID             string         `gorm:"column:id;primaryKey;size:64"`
	GroupID        *string        `gorm:"column:group_id;size:64"`
	Title          string         `gorm:"column:title;size:255"`
	Language       *string        `gorm:"column:language;size:16"`
	StartAt        time.Time      `gorm:"column:start_at"`
	RecordingToken *string        `gorm:"column:recording_token;size:255"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Livestream) TableName() string {
	return "livestreams"
}
