package entity

import "time"

// LivestreamEntity 直播（只读视图，直播的增删改不在本服务内）
type LivestreamEntity struct {
	id             string
	groupID        string
	title          string
	startAt        time.Time
	recordingToken string
}

func NewLivestreamEntity(id, groupID, title string, startAt time.Time, recordingToken string) *LivestreamEntity {
	return &LivestreamEntity{id: id, groupID: groupID, title: title, startAt: startAt, recordingToken: recordingToken}
}

func (e *LivestreamEntity) ID() string             { return e.id }
func (e *LivestreamEntity) GroupID() string        { return e.groupID }
func (e *LivestreamEntity) Title() string          { return e.title }
func (e *LivestreamEntity) StartAt() time.Time     { return e.startAt }
func (e *LivestreamEntity) RecordingToken() string { return e.recordingToken }
