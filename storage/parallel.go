package storage

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelFetch runs get over every path with up to parallelism concurrent
// calls and streams the results on the returned channel in the same order
// paths were given. A per-path error is delivered on Fetched.Err rather
// than aborting the whole batch.
func ParallelFetch(ctx context.Context, paths []string, parallelism int, get func(context.Context, string) ([]byte, error)) <-chan Fetched {
	out := make(chan Fetched, len(paths))
	if len(paths) == 0 {
		close(out)
		return out
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	go func() {
		defer close(out)
		results := make([]Fetched, len(paths))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)
		for i, p := range paths {
			g.Go(func() error {
				b, err := get(gctx, p)
				results[i] = Fetched{Path: p, Bytes: b, Err: err}
				return nil
			})
		}
		_ = g.Wait()
		for _, r := range results {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
