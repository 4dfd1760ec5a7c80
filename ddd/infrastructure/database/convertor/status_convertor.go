package convertor

import (
	"gorm.io/datatypes"

	"livestream-pipeline/ddd/domain/entity"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/ddd/infrastructure/database/po"
)

type StatusConvertor struct{}

func NewStatusConvertor() *StatusConvertor {
	return &StatusConvertor{}
}

func (c *StatusConvertor) ToEntity(row *po.ProcessingStatus) *entity.ProcessingStatusEntity {
	if row == nil {
		return nil
	}
	return entity.NewProcessingStatusEntity(
		row.LivestreamID,
		vo.Stage(row.Stage),
		vo.ProcessingState(row.State),
		row.RetryCount,
		row.NextRetryAt,
		row.ErrorMessage,
		map[string]interface{}(row.Metadata),
		row.UpdatedAt,
	)
}

// UpdateToPO 把部分更新转换为待 upsert 的行，返回需要在冲突时覆盖的列
func (c *StatusConvertor) UpdateToPO(livestreamID string, stage vo.Stage, update entity.StatusUpdate,
	metadata vo.StatusMetadata) (row *po.ProcessingStatus, columns []string, mergeMetadata bool) {
	row = &po.ProcessingStatus{
		LivestreamID: livestreamID,
		Stage:        stage.String(),
		State:        vo.StateIdle.String(),
		Metadata:     datatypes.JSONMap{},
	}

	if update.State != "" {
		row.State = update.State.String()
		columns = append(columns, "state")
	}
	if update.RetryCount != nil {
		row.RetryCount = *update.RetryCount
		columns = append(columns, "retry_count")
	}
	if update.ClearNextRetryAt {
		columns = append(columns, "next_retry_at")
	} else if update.NextRetryAt != nil {
		t := *update.NextRetryAt
		row.NextRetryAt = &t
		columns = append(columns, "next_retry_at")
	}
	if update.ClearErrorMessage {
		columns = append(columns, "error_message")
	} else if update.ErrorMessage != nil {
		msg := *update.ErrorMessage
		row.ErrorMessage = &msg
		columns = append(columns, "error_message")
	}
	if metadata != nil {
		row.Metadata = datatypes.JSONMap(metadata.ToMap())
		mergeMetadata = true
	}
	return row, columns, mergeMetadata
}
