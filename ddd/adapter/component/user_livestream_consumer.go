package component

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"livestream-pipeline/ddd/application/app"
	"livestream-pipeline/ddd/application/cqe"
	pkgkafka "livestream-pipeline/pkg/kafka"
	"livestream-pipeline/pkg/manager"
)

// UserLivestreamConsumerPlugin 用户-直播变更 → 统计增量
type UserLivestreamConsumerPlugin struct{}

func (p *UserLivestreamConsumerPlugin) Name() string { return "userLivestreamConsumer" }

func (p *UserLivestreamConsumerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil || !cfg.Kafka.Enabled || cfg.Kafka.Topics.UserLivestreamChanges == "" {
		return nil
	}
	return &consumerComponent{
		name: p.Name(),
		newLoop: func() *consumeLoop {
			return &consumeLoop{
				name:   p.Name(),
				reader: pkgkafka.DefaultClient().Reader(cfg.Kafka.Topics.UserLivestreamChanges, cfg.Kafka.GroupID),
				handle: newUserLivestreamChangeHandler(app.DefaultStatsApp()),
				policy: policyFrom(cfg),
			}
		},
	}
}

// messageEventID 同一条消息重复投递时 topic/partition/offset 不变
func messageEventID(msg kafka.Message) string {
	return fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
}

// newUserLivestreamChangeHandler 写入失败返回错误，默认原地重试直到写入成功
func newUserLivestreamChangeHandler(statsApp app.StatsApp) handleFunc {
	return func(ctx context.Context, msg kafka.Message) error {
		var change cqe.UserLivestreamChangeCqe
		if err := json.Unmarshal(msg.Value, &change); err != nil {
			return fmt.Errorf("%w: %v", errDecode, err)
		}
		if change.LivestreamID == "" && len(msg.Key) > 0 {
			change.LivestreamID = string(msg.Key)
		}
		if change.EventID == "" {
			change.EventID = messageEventID(msg)
		}
		if err := change.Validate(); err != nil {
			return fmt.Errorf("%w: %v", errDecode, err)
		}
		return statsApp.HandleUserLivestreamChange(ctx, &change)
	}
}
