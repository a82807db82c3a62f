// Package workpool runs blocking calls on a bounded ants pool while the
// caller waits with its own context.
package workpool

import (
	"context"
	"fmt"
	"runtime"

	"github.com/panjf2000/ants/v2"
)

// New creates a pool of the given size. Size < 1 defaults to NumCPU/2, min 1.
func New(size int) (*ants.Pool, error) {
	if size < 1 {
		size = runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create worker pool failed: %w", err)
	}
	return pool, nil
}

// Do submits fn to pool and blocks until it returns or ctx is done. A nil
// pool runs fn on the calling goroutine. When ctx ends first, fn keeps its
// worker until it observes the same ctx and returns.
func Do[T any](ctx context.Context, pool *ants.Pool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if pool == nil {
		return fn(ctx)
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	if err := pool.Submit(func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}); err != nil {
		return zero, fmt.Errorf("submit to worker pool failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}
