package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of concurrent work handed to a Dispatcher.
type Task func(ctx context.Context)

// Dispatcher runs tasks concurrently and returns once all of them finished.
// A non-nil error means the dispatch mechanism itself failed; it is not used
// to report task failures, which tasks record on their own.
type Dispatcher interface {
	Dispatch(ctx context.Context, limit int, tasks []Task) error
}

// DispatcherFunc is a functional adapter for Dispatcher.
type DispatcherFunc func(ctx context.Context, limit int, tasks []Task) error

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(ctx context.Context, limit int, tasks []Task) error {
	return f(ctx, limit, tasks)
}

// GroupDispatcher runs tasks on an errgroup, one goroutine per task, with at
// most limit tasks active at a time when limit is positive.
type GroupDispatcher struct{}

// Dispatch implements Dispatcher.
func (GroupDispatcher) Dispatch(ctx context.Context, limit int, tasks []Task) error {
	g := &errgroup.Group{}
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, task := range tasks {
		g.Go(func() error {
			task(ctx)
			return nil
		})
	}

	return g.Wait()
}
