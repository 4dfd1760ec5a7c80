package task

import (
	"context"
	"sync"
	"time"

	"livestream-pipeline/pkg/logger"
)

// PeriodicTask runs fn every interval until stopped. Runs never overlap:
// a tick that fires while fn is still running is dropped.
type PeriodicTask struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPeriodicTask(name string, interval time.Duration, fn func(ctx context.Context)) *PeriodicTask {
	return &PeriodicTask{name: name, interval: interval, fn: fn}
}

func (p *PeriodicTask) Name() string { return p.name }

func (p *PeriodicTask) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		logger.Infof("Periodic task started name=%s interval=%s", p.name, p.interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.fn(ctx)
			}
		}
	}()
	return nil
}

// Stop cancels the loop and waits for an in-flight run to observe cancellation.
func (p *PeriodicTask) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	logger.Infof("Periodic task stopped name=%s", p.name)
	return nil
}
