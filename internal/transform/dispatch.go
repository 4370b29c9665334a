package transform

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/molprint/pkg/errors"
)

// ChunkFunc processes one chunk.
type ChunkFunc[R any] func(ctx context.Context, c Chunk) (R, error)

// DispatchOption configures one Dispatch call.
type DispatchOption func(*dispatchConfig)

type dispatchConfig struct {
	onWorkerStart func()
}

// OnWorkerStart registers fn to run at the start of every pool goroutine.
// The one-worker path starts none.
func OnWorkerStart(fn func()) DispatchOption {
	return func(c *dispatchConfig) { c.onWorkerStart = fn }
}

// Dispatch runs fn over chunks and returns the results indexed by chunk
// index. With workers == 1 every chunk runs in the calling goroutine.
// Otherwise at most workers chunks run at once; the first failure cancels
// the shared context, outstanding chunks are abandoned and that failure is
// returned. A panicking chunk fails the call like any other error, on both
// paths. Partial results are never returned.
func Dispatch[R any](ctx context.Context, chunks []Chunk, workers int, fn ChunkFunc[R], opts ...DispatchOption) ([]R, error) {
	var cfg dispatchConfig
	for _, o := range opts {
		o(&cfg)
	}

	results := make([]R, len(chunks))
	if workers <= 1 {
		for _, c := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := runChunk(ctx, c, fn)
			if err != nil {
				return nil, err
			}
			results[c.Index] = r
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range chunks {
		if gctx.Err() != nil {
			break
		}
		c := c
		g.Go(func() error {
			if cfg.onWorkerStart != nil {
				cfg.onWorkerStart()
			}
			r, err := runChunk(gctx, c, fn)
			if err != nil {
				return err
			}
			results[c.Index] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The caller's context may have been cancelled after the last chunk
	// finished without any chunk observing it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// runChunk calls fn and turns a panic into an internal error.
func runChunk[R any](ctx context.Context, c Chunk, fn ChunkFunc[R]) (r R, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero R
			r = zero
			err = errors.Newf(errors.ErrCodeInternal, "chunk %d (offset %d) panicked: %v", c.Index, c.Offset, p)
		}
	}()
	return fn(ctx, c)
}
