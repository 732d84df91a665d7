// Package batch runs tasks over a slice in fixed-size concurrent batches.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultSize is the number of items processed concurrently per batch.
const DefaultSize = 5

// Result carries one task's outcome. A task failure is data, not a group
// failure: it never cancels sibling tasks.
type Result[R any] struct {
	Value R
	Err   error
}

// Run processes items in batches of size: items within one batch run
// concurrently, batches run sequentially in submitted order. Results are
// returned in item order regardless of completion order.
func Run[T, R any](ctx context.Context, items []T, size int, fn func(context.Context, T) (R, error)) []Result[R] {
	if size < 1 {
		size = 1
	}

	results := make([]Result[R], len(items))
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				v, err := fn(gctx, items[i])
				results[i] = Result[R]{Value: v, Err: err}
				return nil
			})
		}
		// Group funcs never return an error; Wait only joins the batch.
		_ = g.Wait()
	}
	return results
}
