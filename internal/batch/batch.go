// Package batch runs work units in bounded batches: at most N in flight,
// and the whole batch settles before the next one is dispatched. The bound
// is an explicit parameter rather than whatever fan-out the input happens
// to have.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result pairs a work unit's output with its input index so callers can
// reassemble deterministically regardless of completion order.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Run executes tasks with at most size concurrent at a time. Tasks within a
// batch succeed or fail independently; a failure never cancels siblings.
// Results come back ordered by task index. Run stops early only when ctx is
// done, returning what settled so far plus ctx.Err().
func Run[T any](ctx context.Context, size int, tasks []func(context.Context) (T, error)) ([]Result[T], error) {
	if size < 1 {
		size = 1
	}
	results := make([]Result[T], len(tasks))

	for start := 0; start < len(tasks); start += size {
		if err := ctx.Err(); err != nil {
			return results[:start], err
		}

		end := start + size
		if end > len(tasks) {
			end = len(tasks)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				v, err := tasks[i](ctx)
				results[i] = Result[T]{Index: i, Value: v, Err: err}
				return nil
			})
		}
		_ = g.Wait()
	}

	return results, nil
}
