package entity

import (
	"encoding/json"
	"strings"
)

// StatsRollup 某个聚合根（直播或群组）的计数汇总
type StatsRollup struct {
	RootType string
	RootID   string
	General  map[string]int64
	// Dimensions 维度字段名（如 universityStats） -> 维度值 -> 计数
	Dimensions map[string]map[string]map[string]int64
}

func NewStatsRollup(rootType, rootID string) *StatsRollup {
	return &StatsRollup{
		RootType:   rootType,
		RootID:     rootID,
		General:    map[string]int64{},
		Dimensions: map[string]map[string]map[string]int64{},
	}
}

// MarshalJSON 维度展开为与 generalStats 并列的顶层字段
func (r StatsRollup) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Dimensions)+3)
	for section, buckets := range r.Dimensions {
		out[section] = buckets
	}
	general := r.General
	if general == nil {
		general = map[string]int64{}
	}
	out["rootType"] = r.RootType
	out["rootId"] = r.RootID
	out[GeneralSection] = general
	return json.Marshal(out)
}

// StatsIncrement 一次原子写入中针对某个聚合根的增量
type StatsIncrement struct {
	RootType string
	RootID   string
	Deltas   map[string]int64
}

// Set 按点分路径写入计数，路径形如 generalStats.x 或 universityStats.u1.x
func (r *StatsRollup) Set(path string, value int64) {
	first := strings.IndexByte(path, '.')
	last := strings.LastIndexByte(path, '.')
	if first < 0 {
		return
	}
	section := path[:first]
	if first == last {
		if section == GeneralSection {
			r.General[path[first+1:]] = value
		}
		return
	}
	key, counter := path[first+1:last], path[last+1:]
	buckets, ok := r.Dimensions[section]
	if !ok {
		buckets = map[string]map[string]int64{}
		r.Dimensions[section] = buckets
	}
	if buckets[key] == nil {
		buckets[key] = map[string]int64{}
	}
	buckets[key][counter] = value
}

// GeneralSection 通用计数所在的顶层字段
const GeneralSection = "generalStats"

// 聚合根类型
const (
	RootTypeLivestream = "livestream"
	RootTypeGroup      = "group"
)
