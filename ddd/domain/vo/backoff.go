package vo

import "time"

const (
	DefaultMaxRetries = 5
	DefaultBaseDelay  = 180 * time.Second
	DefaultMaxDelay   = 1200 * time.Second
)

// BackoffPolicy 指数退避：min(BaseDelay * 2^retryCount, MaxDelay)
type BackoffPolicy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{BaseDelay: DefaultBaseDelay, MaxDelay: DefaultMaxDelay}
}

func (p BackoffPolicy) withDefaults() BackoffPolicy {
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	return p
}

// Delay 计算第 retryCount 次重试前的等待时间
func (p BackoffPolicy) Delay(retryCount int) time.Duration {
	p = p.withDefaults()
	if retryCount < 0 {
		retryCount = 0
	}
	delay := p.BaseDelay
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
