// Package bulkwriter buffers writes and flushes them in fixed-size chunks.
package bulkwriter

import (
	"context"
	"errors"
	"sync"
)

const DefaultChunkSize = 20

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("bulkwriter: writer closed")

// FlushFunc persists one chunk.
type FlushFunc[T any] func(ctx context.Context, items []T) error

// Writer accumulates items and hands them to a FlushFunc every chunkSize items.
// The first flush error is sticky: later Adds and Close report it.
type Writer[T any] struct {
	flush     FlushFunc[T]
	chunkSize int

	mu      sync.Mutex
	items   []T
	written int
	err     error
	closed  bool
}

func New[T any](chunkSize int, flush FlushFunc[T]) *Writer[T] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Writer[T]{
		flush:     flush,
		chunkSize: chunkSize,
		items:     make([]T, 0, chunkSize),
	}
}

// Add queues an item, flushing when the buffer reaches chunkSize.
func (w *Writer[T]) Add(ctx context.Context, item T) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}
	w.items = append(w.items, item)
	if len(w.items) >= w.chunkSize {
		return w.flushLocked(ctx)
	}
	return nil
}

// Flush writes whatever is buffered.
func (w *Writer[T]) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	return w.flushLocked(ctx)
}

// Close flushes the remaining items. Safe to call more than once.
func (w *Writer[T]) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}
	return w.flushLocked(ctx)
}

// Written reports how many items were flushed successfully.
func (w *Writer[T]) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *Writer[T]) flushLocked(ctx context.Context) error {
	if len(w.items) == 0 {
		return nil
	}
	items := w.items
	w.items = make([]T, 0, w.chunkSize)

	if err := w.flush(ctx, items); err != nil {
		w.err = err
		return err
	}
	w.written += len(items)
	return nil
}
