package transform

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/turtacn/molprint/pkg/errors"
)

func TestPartition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		n, workers, batch int
		wantSpans         int
		maxLen, minLen    int
	}{
		{name: "empty", n: 0, workers: 4, wantSpans: 0},
		{name: "single worker", n: 10, workers: 1, wantSpans: 1, maxLen: 10, minLen: 10},
		{name: "balanced", n: 10, workers: 3, wantSpans: 3, maxLen: 4, minLen: 3},
		{name: "more workers than items", n: 2, workers: 8, wantSpans: 2, maxLen: 1, minLen: 1},
		{name: "batch size", n: 10, workers: 3, batch: 4, wantSpans: 3, maxLen: 4, minLen: 2},
		{name: "batch size larger than n", n: 3, workers: 2, batch: 100, wantSpans: 1, maxLen: 3, minLen: 3},
		{name: "batch size one", n: 5, workers: 1, batch: 1, wantSpans: 5, maxLen: 1, minLen: 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spans := Partition(tt.n, tt.workers, tt.batch)
			require.Len(t, spans, tt.wantSpans)

			next := 0
			for _, s := range spans {
				assert.Equal(t, next, s.Start, "spans must be contiguous")
				assert.LessOrEqual(t, s.Len(), tt.maxLen)
				assert.GreaterOrEqual(t, s.Len(), tt.minLen)
				if tt.batch > 0 {
					assert.LessOrEqual(t, s.Len(), tt.batch)
				}
				next = s.End
			}
			assert.Equal(t, tt.n, next, "spans must cover [0, n)")
		})
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	items := []any{"a", "b", "c", "d", "e"}
	chunks := Split(items, Partition(len(items), 2, 0))
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Offset)
	assert.Equal(t, []any{"a", "b", "c"}, chunks[0].Items)
	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, 3, chunks[1].Offset)
	assert.Equal(t, []any{"d", "e"}, chunks[1].Items)
}

func TestEffectiveWorkers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, EffectiveWorkers(nil, 8))
	assert.Equal(t, 8, EffectiveWorkers(Jobs(-1), 8))
	assert.Equal(t, 7, EffectiveWorkers(Jobs(-2), 8))
	assert.Equal(t, 1, EffectiveWorkers(Jobs(-100), 8))
	assert.Equal(t, 3, EffectiveWorkers(Jobs(3), 8))
	assert.Equal(t, 16, EffectiveWorkers(Jobs(16), 8))
}

func TestDispatch_OrderedResults(t *testing.T) {
	t.Parallel()

	items := make([]any, 100)
	for i := range items {
		items[i] = i
	}
	for _, workers := range []int{1, 2, 7} {
		chunks := Split(items, Partition(len(items), workers, 9))
		got, err := Dispatch(context.Background(), chunks, workers, func(_ context.Context, c Chunk) (int, error) {
			return c.Offset, nil
		})
		require.NoError(t, err)
		for i, off := range got {
			assert.Equal(t, i*9, off, "workers=%d", workers)
		}
	}
}

func TestDispatch_FirstErrorWins(t *testing.T) {
	t.Parallel()

	items := make([]any, 50)
	chunks := Split(items, Partition(len(items), 4, 5))
	boom := stderrors.New("boom")
	got, err := Dispatch(context.Background(), chunks, 4, func(ctx context.Context, c Chunk) (int, error) {
		if c.Index == 3 {
			return 0, fmt.Errorf("chunk %d: %w", c.Index, boom)
		}
		return c.Index, nil
	})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestDispatch_PanicBecomesError(t *testing.T) {
	t.Parallel()

	chunks := Split(make([]any, 30), Partition(30, 3, 0))
	for _, workers := range []int{1, 3} {
		got, err := Dispatch(context.Background(), chunks, workers, func(_ context.Context, c Chunk) (int, error) {
			if c.Index == 1 {
				var dense []uint8
				_ = dense[c.Offset] // index out of range
			}
			return c.Index, nil
		})
		require.Error(t, err, "workers=%d", workers)
		assert.Nil(t, got)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInternal), "workers=%d", workers)
		assert.Contains(t, err.Error(), "chunk 1 (offset 10) panicked")
	}
}

func TestDispatch_OnWorkerStart(t *testing.T) {
	t.Parallel()

	chunks := Split(make([]any, 12), Partition(12, 4, 0))
	for _, tt := range []struct{ workers, want int }{{1, 0}, {4, 4}} {
		var started atomic.Int64
		_, err := Dispatch(context.Background(), chunks, tt.workers,
			func(context.Context, Chunk) (int, error) { return 0, nil },
			OnWorkerStart(func() { started.Inc() }))
		require.NoError(t, err)
		assert.Equal(t, int64(tt.want), started.Load(), "workers=%d", tt.workers)
	}
}

func TestDispatch_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks := Split(make([]any, 10), Partition(10, 2, 0))
	for _, workers := range []int{1, 2} {
		_, err := Dispatch(ctx, chunks, workers, func(context.Context, Chunk) (int, error) { return 0, nil })
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}
