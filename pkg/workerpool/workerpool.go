// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Process runs a worker pool over the provided work items, invoking process for each.
// If process returns an error, the pool cancels the context and stops further work.
func Process[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
	onCancel func(),
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
	)
	run(ctx, workerCount, items, func(ctx context.Context, item T) bool {
		if err := process(ctx, item); err != nil {
			once.Do(func() {
				firstErr = err
				if onCancel != nil {
					onCancel()
				}
				cancel()
			})
			return false
		}
		return true
	})

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// ProcessAll runs process for every item with workerCount workers. A failed
// item does not stop the others; all failures are returned combined. Items not
// started before ctx is done are skipped and ctx.Err() is included.
func ProcessAll[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
) error {
	var (
		mu   sync.Mutex
		errs error
	)
	run(ctx, workerCount, items, func(ctx context.Context, item T) bool {
		if err := process(ctx, item); err != nil {
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
		}
		return true
	})
	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// run feeds items to workerCount workers until items are exhausted, ctx is
// done or handle returns false.
func run[T any](ctx context.Context, workerCount int, items []T, handle func(context.Context, T) bool) {
	if workerCount < 1 {
		workerCount = 1
	}
	tasks := make(chan T)
	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if !handle(ctx, item) {
					return
				}
			}
		}()
	}

	done := ctx.Done()
feed:
	for _, item := range items {
		select {
		case <-done:
			break feed
		default:
		}
		select {
		case <-done:
			break feed
		case tasks <- item:
		}
	}
	close(tasks)
	wg.Wait()
}
