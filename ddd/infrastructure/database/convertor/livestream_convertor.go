package convertor

import (
	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/infrastructure/database/po"
)

type LivestreamConvertor struct{}

func NewLivestreamConvertor() *LivestreamConvertor {
	return &LivestreamConvertor{}
}

func (c *LivestreamConvertor) ToEntity(row *po.Livestream) *entity.LivestreamEntity {
	return entity.NewLivestreamEntity(row.ID, deref(row.GroupID), row.Title, row.StartAt, deref(row.RecordingToken))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
