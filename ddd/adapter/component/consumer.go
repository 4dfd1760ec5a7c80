package component

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"livestream-pipeline/ddd/domain/service"
	"livestream-pipeline/ddd/domain/vo"
	"livestream-pipeline/pkg/logger"
)

// messageReader kafka.Reader 的子集
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// errDecode 消息体无法解析，重试无意义，记录后直接提交
var errDecode = errors.New("undecodable message")

type handleFunc func(ctx context.Context, msg kafka.Message) error

// commitPolicy 处理失败时的做法。提交后面的 offset 会连带提交前面的，
// 所以不跳过就只能原地重试同一条消息
type commitPolicy struct {
	// OnProcessError 为 true 时记录错误后提交跳过，否则退避重试直到成功或 ctx 结束
	OnProcessError bool
}

// processRetryBackoff 原地重试的退避
var processRetryBackoff = vo.BackoffPolicy{BaseDelay: time.Second, MaxDelay: 30 * time.Second}

// consumeLoop 拉取、处理、提交，直到 ctx 结束。成功处理后才提交（至少一次）
type consumeLoop struct {
	name   string
	reader messageReader
	handle handleFunc
	policy commitPolicy
	// sleep 测试时替换
	sleep service.SleepFunc

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (l *consumeLoop) Name() string { return l.name }

func (l *consumeLoop) Start(ctx context.Context) error {
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.reader.Close()
		logger.Infof("Kafka consumer started name=%s", l.name)
		l.run(ctx)
	}()
	return nil
}

func (l *consumeLoop) Stop() error {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	logger.Infof("Kafka consumer stopped name=%s", l.name)
	return nil
}

func (l *consumeLoop) run(ctx context.Context) {
	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				logger.Debug("Kafka reader EOF", map[string]interface{}{"consumer": l.name})
			} else {
				logger.Warnf("Kafka fetch error consumer=%s error=%v", l.name, err)
			}
			// 避免 broker 不可用时空转
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// ctx 结束时不提交，组内下一个消费者从已提交 offset 重放
		if !l.process(ctx, msg) {
			return
		}
		if err := l.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Warnf("Kafka commit failed consumer=%s partition=%d offset=%d error=%v", l.name, msg.Partition, msg.Offset, err)
		}
	}
}

// process 返回 true 表示可以提交
func (l *consumeLoop) process(ctx context.Context, msg kafka.Message) bool {
	sleep := l.sleep
	if sleep == nil {
		sleep = service.ContextSleep
	}
	for attempt := 0; ; attempt++ {
		err := l.handle(ctx, msg)
		switch {
		case err == nil:
			return true
		case errors.Is(err, errDecode):
			logger.Warnf("Kafka message skipped consumer=%s offset=%d error=%v", l.name, msg.Offset, err)
			return true
		case l.policy.OnProcessError:
			logger.Error("Kafka message handling failed, skipped", map[string]interface{}{
				"consumer": l.name,
				"offset":   msg.Offset,
				"error":    err.Error(),
			})
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		delay := processRetryBackoff.Delay(attempt)
		logger.Error("Kafka message handling failed, retrying", map[string]interface{}{
			"consumer": l.name,
			"offset":   msg.Offset,
			"attempt":  attempt + 1,
			"delay":    delay.String(),
			"error":    err.Error(),
		})
		if err := sleep(ctx, delay); err != nil {
			return false
		}
	}
}
