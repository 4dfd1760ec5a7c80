package po

import "time"

// StatsCounter 一个聚合根下的一个计数路径，例如 universityStats.tum.numberOfParticipants
type StatsCounter struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	RootType  string    `gorm:"column:root_type;size:32;not null;uniqueIndex:uk_stats_root_path"`
	RootID    string    `gorm:"column:root_id;size:64;not null;uniqueIndex:uk_stats_root_path"`
	Path      string    `gorm:"column:path;size:255;not null;uniqueIndex:uk_stats_root_path"`
	Value     int64     `gorm:"column:value;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (StatsCounter) TableName() string {
	return "stats_counters"
}

// StatsAppliedEvent 已经计入统计的变更事件，重复投递时据此跳过
type StatsAppliedEvent struct {
	EventID   string    `gorm:"column:event_id;primaryKey;size:191"`
	AppliedAt time.Time `gorm:"column:applied_at;autoCreateTime"`
}

func (StatsAppliedEvent) TableName() string {
	return "stats_applied_events"
}
