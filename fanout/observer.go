package fanout

import (
	"context"

	"github.com/hupe1980/agentfanout/core"
)

// Strategy names the fan-out strategy that produced a report.
type Strategy string

const (
	// StrategyConcurrent dispatches all calls at once.
	StrategyConcurrent Strategy = "concurrent"
	// StrategySequential calls targets one at a time.
	StrategySequential Strategy = "sequential"
)

// Observer receives lifecycle notifications from a FanOut.
//
// Observers are invoked synchronously from the goroutine performing the
// call, so implementations must be safe for concurrent use and should return
// quickly.
type Observer interface {
	// OnCallStart is invoked before the first attempt of a call.
	OnCallStart(ctx context.Context, target core.Target)
	// OnCallEnd is invoked once with the normalized result of a call.
	OnCallEnd(ctx context.Context, result core.CallResult)
	// OnFallback is invoked when Orchestrate abandons the concurrent strategy.
	OnFallback(ctx context.Context, err error)
	// OnComplete is invoked once per FanOutConcurrent, FanOutSequential or
	// Orchestrate run with the strategy that produced the report.
	OnComplete(ctx context.Context, strategy Strategy, report core.ReportSet)
}

// NoOpObserver ignores all notifications.
type NoOpObserver struct{}

// OnCallStart implements Observer.
func (NoOpObserver) OnCallStart(context.Context, core.Target) {}

// OnCallEnd implements Observer.
func (NoOpObserver) OnCallEnd(context.Context, core.CallResult) {}

// OnFallback implements Observer.
func (NoOpObserver) OnFallback(context.Context, error) {}

// OnComplete implements Observer.
func (NoOpObserver) OnComplete(context.Context, Strategy, core.ReportSet) {}

// ObserverFuncs adapts optional functions to the Observer interface. Nil
// fields are skipped.
type ObserverFuncs struct {
	CallStart func(ctx context.Context, target core.Target)
	CallEnd   func(ctx context.Context, result core.CallResult)
	Fallback  func(ctx context.Context, err error)
	Complete  func(ctx context.Context, strategy Strategy, report core.ReportSet)
}

// OnCallStart implements Observer.
func (o ObserverFuncs) OnCallStart(ctx context.Context, target core.Target) {
	if o.CallStart != nil {
		o.CallStart(ctx, target)
	}
}

// OnCallEnd implements Observer.
func (o ObserverFuncs) OnCallEnd(ctx context.Context, result core.CallResult) {
	if o.CallEnd != nil {
		o.CallEnd(ctx, result)
	}
}

// OnFallback implements Observer.
func (o ObserverFuncs) OnFallback(ctx context.Context, err error) {
	if o.Fallback != nil {
		o.Fallback(ctx, err)
	}
}

// OnComplete implements Observer.
func (o ObserverFuncs) OnComplete(ctx context.Context, strategy Strategy, report core.ReportSet) {
	if o.Complete != nil {
		o.Complete(ctx, strategy, report)
	}
}

// MultiObserver fans notifications out to several observers in order.
type MultiObserver []Observer

// OnCallStart implements Observer.
func (m MultiObserver) OnCallStart(ctx context.Context, target core.Target) {
	for _, o := range m {
		o.OnCallStart(ctx, target)
	}
}

// OnCallEnd implements Observer.
func (m MultiObserver) OnCallEnd(ctx context.Context, result core.CallResult) {
	for _, o := range m {
		o.OnCallEnd(ctx, result)
	}
}

// OnFallback implements Observer.
func (m MultiObserver) OnFallback(ctx context.Context, err error) {
	for _, o := range m {
		o.OnFallback(ctx, err)
	}
}

// OnComplete implements Observer.
func (m MultiObserver) OnComplete(ctx context.Context, strategy Strategy, report core.ReportSet) {
	for _, o := range m {
		o.OnComplete(ctx, strategy, report)
	}
}
