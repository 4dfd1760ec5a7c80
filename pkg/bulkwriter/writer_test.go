package bulkwriter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterFlushesInChunks(t *testing.T) {
	var batches [][]int
	w := New(20, func(_ context.Context, items []int) error {
		batches = append(batches, append([]int(nil), items...))
		return nil
	})

	ctx := context.Background()
	for i := 0; i < 45; i++ {
		require.NoError(t, w.Add(ctx, i))
	}
	require.Len(t, batches, 2)
	assert.Equal(t, 40, w.Written())

	require.NoError(t, w.Close(ctx))
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 20)
	assert.Len(t, batches[1], 20)
	assert.Equal(t, []int{40, 41, 42, 43, 44}, batches[2])
	assert.Equal(t, 45, w.Written())
}

func TestWriterStickyError(t *testing.T) {
	boom := errors.New("insert failed")
	calls := 0
	w := New(2, func(context.Context, []string) error {
		calls++
		return boom
	})

	ctx := context.Background()
	require.NoError(t, w.Add(ctx, "a"))
	assert.ErrorIs(t, w.Add(ctx, "b"), boom)
	assert.ErrorIs(t, w.Add(ctx, "c"), boom)
	assert.ErrorIs(t, w.Close(ctx), boom)
	assert.Equal(t, 1, calls)
	assert.Zero(t, w.Written())
}

func TestWriterAddAfterClose(t *testing.T) {
	w := New(0, func(context.Context, []int) error { return nil })
	require.NoError(t, w.Close(context.Background()))
	assert.ErrorIs(t, w.Add(context.Background(), 1), ErrClosed)
	assert.NoError(t, w.Close(context.Background()))
}
