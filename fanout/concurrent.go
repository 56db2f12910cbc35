package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentfanout/core"
)

// ErrConcurrencyUnavailable signals that the concurrent dispatch mechanism
// could not be used. Orchestrate reacts to it by running sequentially.
var ErrConcurrencyUnavailable = errors.New("fanout: concurrency unavailable")

// FanOutConcurrent calls every target concurrently and waits for all of them.
//
// The returned report has one result per target in declaration order,
// independent of completion order. A panic escaping a task is converted into
// an error result for that target. ErrConcurrencyUnavailable is returned,
// without a report, when no Dispatcher is configured, the Dispatcher fails or
// a result slot is left unfilled.
func (f *FanOut) FanOutConcurrent(ctx context.Context, targets []core.Target, input string) (core.ReportSet, error) {
	start := time.Now()

	report, err := f.fanOutConcurrent(ctx, targets, input)
	if err != nil {
		return nil, err
	}

	f.complete(ctx, StrategyConcurrent, report, time.Since(start))

	return report, nil
}

func (f *FanOut) fanOutConcurrent(ctx context.Context, targets []core.Target, input string) (core.ReportSet, error) {
	if f.opts.Dispatcher == nil {
		return nil, fmt.Errorf("%w: no dispatcher configured", ErrConcurrencyUnavailable)
	}

	// Tasks may outlive a failed dispatch. They only touch these locals,
	// which are not read after a failure, and skip the call once abandoned.
	var abandoned atomic.Bool

	results := make(core.ReportSet, len(targets))
	filled := make([]atomic.Bool, len(targets))

	tasks := make([]Task, len(targets))
	for i, target := range targets {
		tasks[i] = func(ctx context.Context) {
			if abandoned.Load() {
				return
			}

			results[i] = f.protectedCall(ctx, target, input, "parallel execution")
			filled[i].Store(true)
		}
	}

	if err := f.dispatch(ctx, tasks); err != nil {
		abandoned.Store(true)
		return nil, fmt.Errorf("%w: %v", ErrConcurrencyUnavailable, err)
	}

	for i := range filled {
		if !filled[i].Load() {
			abandoned.Store(true)
			return nil, fmt.Errorf("%w: no result for target %q", ErrConcurrencyUnavailable, targets[i].Name)
		}
	}

	report := make(core.ReportSet, len(results))
	copy(report, results)

	return report, nil
}

func (f *FanOut) dispatch(ctx context.Context, tasks []Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatcher panicked: %v", r)
		}
	}()

	return f.opts.Dispatcher.Dispatch(ctx, f.opts.MaxConcurrency, tasks)
}

// FanOutSequential calls targets strictly one at a time in declaration order.
// The report always has one result per target.
func (f *FanOut) FanOutSequential(ctx context.Context, targets []core.Target, input string) core.ReportSet {
	start := time.Now()
	report := f.fanOutSequential(ctx, targets, input)
	f.complete(ctx, StrategySequential, report, time.Since(start))

	return report
}

func (f *FanOut) fanOutSequential(ctx context.Context, targets []core.Target, input string) core.ReportSet {
	report := make(core.ReportSet, 0, len(targets))
	for _, target := range targets {
		report = append(report, f.protectedCall(ctx, target, input, "sequential execution"))
	}

	return report
}

// Orchestrate runs the concurrent strategy and falls back to the sequential
// one when concurrency is unavailable. It never fails and never panics; an
// empty target list yields an empty report and still completes as concurrent.
func (f *FanOut) Orchestrate(ctx context.Context, targets []core.Target, input string) core.ReportSet {
	ctx, span := f.tracer.Start(ctx, "fanout.orchestrate", trace.WithAttributes(
		attribute.Int("fanout.targets", len(targets)),
	))
	defer span.End()

	start := time.Now()

	if len(targets) == 0 {
		report := core.ReportSet{}
		f.complete(ctx, StrategyConcurrent, report, time.Since(start))

		return report
	}

	f.opts.Logger.Info("Attempting parallel execution", "targets", len(targets))

	strategy := StrategyConcurrent

	report, err := f.fanOutConcurrent(ctx, targets, input)
	if err != nil {
		f.opts.Logger.Warn("Parallel execution failed, using sequential execution", "error", err)
		f.notify("OnFallback", func() { f.opts.Observer.OnFallback(ctx, err) })
		span.AddEvent("fallback", trace.WithAttributes(attribute.String("error", err.Error())))

		strategy = StrategySequential
		report = f.fanOutSequential(ctx, targets, input)
	}

	span.SetAttributes(
		attribute.String("fanout.strategy", string(strategy)),
		attribute.Int("fanout.successes", report.Successes()),
	)

	f.complete(ctx, strategy, report, time.Since(start))

	return report
}

// fanOutLogger is implemented by loggers with a dedicated fan-out helper.
type fanOutLogger interface {
	LogFanOut(strategy string, targets, succeeded int, dur time.Duration)
}

func (f *FanOut) complete(ctx context.Context, strategy Strategy, report core.ReportSet, dur time.Duration) {
	f.notify("OnComplete", func() { f.finish(ctx, strategy, report, dur) })
}

func (f *FanOut) finish(ctx context.Context, strategy Strategy, report core.ReportSet, dur time.Duration) {
	if fl, ok := f.opts.Logger.(fanOutLogger); ok {
		fl.LogFanOut(string(strategy), len(report), report.Successes(), dur)
	} else {
		f.opts.Logger.Info("Fan-out completed", "strategy", strategy, "summary", report.Summary(), "duration", dur)
	}

	f.opts.Observer.OnComplete(ctx, strategy, report)
}
