package event

import (
	"context"
	"encoding/json"
	"fmt"

	"livestream-pipeline/ddd/domain/gateway"
	"livestream-pipeline/pkg/logger"
)

// Producer pkg/kafka.Client 满足该接口
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// KafkaEventPublisher 以直播 ID 为 key 发布，保证同一直播的事件有序
type KafkaEventPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaEventPublisher(producer Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishTranscriptionCompleted(ctx context.Context, event gateway.TranscriptionCompletedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode transcription event: %w", err)
	}
	if err := p.producer.Produce(ctx, p.topic, []byte(event.LivestreamID), value); err != nil {
		return fmt.Errorf("publish transcription event: %w", err)
	}
	logger.Debug("Transcription event published", map[string]interface{}{
		"topic":         p.topic,
		"livestream_id": event.LivestreamID,
	})
	return nil
}
