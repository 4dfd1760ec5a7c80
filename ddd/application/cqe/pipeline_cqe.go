package cqe

import (
	"strings"

	"livestream-pipeline/ddd/domain/stats"
	"livestream-pipeline/pkg/errno"
)

// TriggerCqe 手动触发转写/章节化，query 与 JSON body 均可
type TriggerCqe struct {
	LivestreamID string `form:"livestreamId" json:"livestreamId"`
}

func (c *TriggerCqe) Validate() error {
	c.LivestreamID = strings.TrimSpace(c.LivestreamID)
	if c.LivestreamID == "" {
		return errno.New(errno.ErrMissingParam, "livestreamId", nil)
	}
	return nil
}

// UserLivestreamChangeCqe 用户-直播文档的一次变更，Old 为 nil 表示新建，New 为 nil 表示删除
type UserLivestreamChangeCqe struct {
	// EventID 去重键，为空时不去重
	EventID      string                `json:"eventId,omitempty"`
	LivestreamID string                `json:"livestreamId"`
	GroupID      string                `json:"groupId,omitempty"`
	Old          *stats.UserLivestream `json:"old,omitempty"`
	New          *stats.UserLivestream `json:"new,omitempty"`
}

func (c *UserLivestreamChangeCqe) Validate() error {
	if strings.TrimSpace(c.LivestreamID) == "" {
		return errno.New(errno.ErrMissingParam, "livestreamId", nil)
	}
	if c.Old == nil && c.New == nil {
		return errno.New(errno.ErrInvalidParam, "change carries neither old nor new state", nil)
	}
	return nil
}
