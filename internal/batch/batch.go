// Package batch runs independent per-document extractions with bounded
// concurrency. Retry with backoff lives here, at the caller level: the
// pipeline itself never retries.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/devanand13/bomx/internal/providers"
)

// Result reports the outcome of one document.
type Result struct {
	Path string
	Err  error
}

// Runner fans paths out to a worker pool. All workers pull from a single
// shared queue.
type Runner struct {
	Workers    int           // Worker goroutines (default 4)
	Retries    uint          // Extra attempts for retryable failures
	RetryDelay time.Duration // Base backoff delay (default 2s)
	Process    func(ctx context.Context, path string) error
	Logger     *slog.Logger
}

// Run processes all paths and returns one Result per path. A failed
// document is logged and skipped; the rest of the batch continues.
func (r *Runner) Run(ctx context.Context, paths []string) []Result {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	delay := r.RetryDelay
	if delay == 0 {
		delay = 2 * time.Second
	}

	queue := make(chan int)
	results := make([]Result, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				path := paths[i]
				err := r.processOne(ctx, path, delay)
				if err != nil {
					logger.Error("document failed", "path", path, "error", err)
				}
				results[i] = Result{Path: path, Err: err}
			}
		}()
	}

	for i := range paths {
		select {
		case <-ctx.Done():
			results[i] = Result{Path: paths[i], Err: ctx.Err()}
			continue
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()

	return results
}

func (r *Runner) processOne(ctx context.Context, path string, delay time.Duration) error {
	if r.Retries == 0 {
		return r.Process(ctx, path)
	}

	return retry.Do(
		func() error { return r.Process(ctx, path) },
		retry.Context(ctx),
		retry.Attempts(r.Retries+1),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		// Only transient backend failures are worth a retry; schema,
		// document, and reply-shape failures are deterministic.
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, providers.ErrBackendUnavailable)
		}),
	)
}

// Failed counts unsuccessful documents.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
