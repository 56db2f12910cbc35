package core

import "context"

// Caller is the remote request/response operation against a single target.
//
// Implementations are synchronous from the caller's perspective and may fail
// with an arbitrary error. They must be safe for concurrent use because the
// fan-out dispatches calls for different targets at the same time. Each call
// owns whatever remote conversation/session handle it needs.
type Caller interface {
	Call(ctx context.Context, target Target, input string) (string, error)
}

// CallerFunc is a functional adapter to allow ordinary functions to be used as Callers.
type CallerFunc func(ctx context.Context, target Target, input string) (string, error)

// Call implements Caller.
func (f CallerFunc) Call(ctx context.Context, target Target, input string) (string, error) {
	return f(ctx, target, input)
}
