package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// forEach runs fn(i) for i in [0, n) on a bounded worker pool.
// Every job writes only its own slot, so no result channel is needed.
// Cancellation is checked between jobs.
func forEach(ctx context.Context, n, workers int, fn func(i int)) error {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				fn(i)
			}
		}()
	}
	wg.Wait()

	return ctx.Err()
}

// safely runs fn and converts a panic into an error
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}
