// Package retry runs an operation with bounded exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"livestream-pipeline/pkg/logger"
)

const (
	DefaultMaxRetries   = 3
	DefaultBaseDelay    = time.Second
	DefaultMaxDelay     = 30 * time.Second
	DefaultJitterFactor = 0.2
)

type Config struct {
	// MaxRetries 额外重试次数，总调用次数为 MaxRetries+1
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	JitterFactor float64
	IsRetryable  func(error) bool
	// Sleep 测试时替换
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:   DefaultMaxRetries,
		BaseDelay:    DefaultBaseDelay,
		MaxDelay:     DefaultMaxDelay,
		JitterFactor: DefaultJitterFactor,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记不应重试的错误
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent 错误链上是否带有 Permanent 标记
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do 执行 fn 直到成功、遇到不可重试错误或用尽次数，返回最后一次的错误
func Do(ctx context.Context, cfg Config, fn func(attempt int) error) error {
	cfg = cfg.withDefaults()
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(attempt); lastErr == nil {
			return nil
		}
		if !cfg.IsRetryable(lastErr) || attempt == cfg.MaxRetries {
			return unwrapPermanent(lastErr)
		}
		delay := Backoff(cfg, attempt)
		logger.Debugf("Retrying after error attempt=%d max=%d delay=%s error=%v", attempt+1, cfg.MaxRetries, delay, lastErr)
		if err := cfg.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	return unwrapPermanent(lastErr)
}

// Backoff 指数退避加抖动
func Backoff(cfg Config, attempt int) time.Duration {
	cfg = cfg.withDefaults()
	delay := cfg.BaseDelay << min(attempt, 10)
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}
	jitter := float64(delay) * cfg.JitterFactor * (rand.Float64() - 0.5)
	return time.Duration(float64(delay) + jitter)
}

func unwrapPermanent(err error) error {
	var p *permanentError
	if errors.As(err, &p) {
		return p.err
	}
	return err
}

func defaultRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !IsPermanent(err)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.JitterFactor < 0 {
		c.JitterFactor = 0
	}
	if c.IsRetryable == nil {
		c.IsRetryable = defaultRetryable
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
	return c
}
