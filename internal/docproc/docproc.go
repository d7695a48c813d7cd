// Package docproc provides concurrent processing of in-memory
// documents with deterministic result ordering.
package docproc

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for
// worker count. 2x suits mixed CGO and hashing workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each item is processed.
type ProgressFunc func()

// MapIndexed processes items in parallel and collects results into a
// slice aligned with the input order. Each worker invocation receives
// the item index and the item. If maxWorkers is <= 0, defaults to
// 2x NumCPU. Returns the context's error if it is canceled before all
// items finish.
func MapIndexed[T any, R any](ctx context.Context, items []T, maxWorkers int, fn func(int, T) R, onProgress ProgressFunc) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]R, len(items))

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, item := range items {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			results[i] = fn(i, item)
			if onProgress != nil {
				onProgress()
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
