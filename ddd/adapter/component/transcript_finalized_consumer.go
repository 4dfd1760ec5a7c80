package component

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/segmentio/kafka-go"

	"livestream-pipeline/ddd/application/app"
	"livestream-pipeline/ddd/application/cqe"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/pkg/config"
	"livestream-pipeline/pkg/errno"
	pkgkafka "livestream-pipeline/pkg/kafka"
	"livestream-pipeline/pkg/logger"
	"livestream-pipeline/pkg/manager"
	"livestream-pipeline/pkg/task"
)

// TranscriptFinalizedConsumerPlugin 订阅 MinIO 桶通知，转写文件写入后触发章节化
type TranscriptFinalizedConsumerPlugin struct{}

func (p *TranscriptFinalizedConsumerPlugin) Name() string { return "transcriptFinalizedConsumer" }

func (p *TranscriptFinalizedConsumerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil || !cfg.Kafka.Enabled || cfg.Kafka.Topics.ObjectEvents == "" {
		return nil
	}
	return &consumerComponent{
		name: p.Name(),
		newLoop: func() *consumeLoop {
			return &consumeLoop{
				name:   p.Name(),
				reader: pkgkafka.DefaultClient().Reader(cfg.Kafka.Topics.ObjectEvents, cfg.Kafka.GroupID),
				handle: newTranscriptFinalizedHandler(app.DefaultPipelineApp()),
				policy: policyFrom(cfg),
			}
		},
	}
}

// bucketNotification MinIO 事件通知格式（S3 兼容）
type bucketNotification struct {
	EventName string `json:"EventName"`
	Key       string `json:"Key"`
	Records   []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// CreatedObjectKeys 提取 ObjectCreated 事件的对象 key（已 URL 解码）
func CreatedObjectKeys(payload []byte) ([]string, error) {
	var n bucketNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", errDecode, err)
	}
	var keys []string
	for _, r := range n.Records {
		if !strings.HasPrefix(r.EventName, "s3:ObjectCreated:") {
			continue
		}
		key, err := url.QueryUnescape(r.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: object key %q: %v", errDecode, r.S3.Object.Key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// newTranscriptFinalizedHandler 非转写文件的 key 直接忽略；章节化失败只记录日志
func newTranscriptFinalizedHandler(pipelineApp app.PipelineApp) handleFunc {
	return func(ctx context.Context, msg kafka.Message) error {
		keys, err := CreatedObjectKeys(msg.Value)
		if err != nil {
			return err
		}
		for _, key := range keys {
			livestreamID, ok := vo.ParseTranscriptObjectPath(key)
			if !ok {
				continue
			}
			logger.Info("Transcript finalized, chapterizing", map[string]interface{}{"livestream_id": livestreamID, "key": key})
			chapters, err := pipelineApp.TriggerChapterization(ctx, &cqe.TriggerCqe{LivestreamID: livestreamID})
			switch {
			case err == nil:
				logger.Infof("Chapterization finished livestream_id=%s chapters=%d", livestreamID, len(chapters))
			case errors.Is(err, errno.ErrAlreadyInProgress):
				logger.Infof("Chapterization already running livestream_id=%s", livestreamID)
			default:
				logger.Error("Chapterization from object event failed", map[string]interface{}{
					"livestream_id": livestreamID,
					"error":         err.Error(),
				})
			}
		}
		return nil
	}
}

func policyFrom(cfg *config.Config) commitPolicy {
	return commitPolicy{OnProcessError: cfg.Kafka.CommitOnProcessError}
}

// consumerComponent 启动时把消费循环注册为后台任务
type consumerComponent struct {
	name    string
	newLoop func() *consumeLoop
}

func (c *consumerComponent) Start() error {
	task.Register(c.newLoop())
	logger.Infof("Kafka consumer registered name=%s", c.name)
	return nil
}

// Stop 后台任务由 task 管理器停止
func (c *consumerComponent) Stop() error { return nil }

func (c *consumerComponent) GetName() string { return c.name }
