package convertor

import (
	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/infrastructure/database/po"
)

type ChapterConvertor struct{}

func NewChapterConvertor() *ChapterConvertor {
	return &ChapterConvertor{}
}

func (c *ChapterConvertor) ToPO(ch *entity.Chapter) *po.Chapter {
	return &po.Chapter{
		ID:           ch.ID,
		LivestreamID: ch.LivestreamID,
		ChapterIndex: ch.ChapterIndex,
		Title:        ch.Title,
		Summary:      ch.Summary,
		StartSec:     ch.StartSec,
		EndSec:       ch.EndSec,
		CreatedAt:    ch.CreatedAt,
	}
}

func (c *ChapterConvertor) ToEntity(row *po.Chapter) *entity.Chapter {
	return &entity.Chapter{
		ID:           row.ID,
		LivestreamID: row.LivestreamID,
		ChapterIndex: row.ChapterIndex,
		Title:        row.Title,
		Summary:      row.Summary,
		StartSec:     row.StartSec,
		EndSec:       row.EndSec,
		CreatedAt:    row.CreatedAt,
	}
}

func (c *ChapterConvertor) ToPOList(chapters []*entity.Chapter) []*po.Chapter {
	rows := make([]*po.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		rows = append(rows, c.ToPO(ch))
	}
	return rows
}

func (c *ChapterConvertor) ToEntityList(rows []*po.Chapter) []*entity.Chapter {
	chapters := make([]*entity.Chapter, 0, len(rows))
	for _, row := range rows {
		chapters = append(chapters, c.ToEntity(row))
	}
	return chapters
}
