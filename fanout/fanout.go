package fanout

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/logging"
)

const tracerName = "github.com/hupe1980/agentfanout/fanout"

// Options configures a FanOut.
type Options struct {
	// MaxConcurrency bounds the number of in-flight calls of a concurrent
	// fan-out. Zero or negative means unbounded.
	MaxConcurrency int

	// Dispatcher runs the concurrent tasks. Setting it to nil makes the
	// concurrent strategy unavailable so Orchestrate always runs sequentially.
	Dispatcher Dispatcher

	// Retry controls repeated attempts of a single call.
	Retry RetryPolicy

	// RateLimit caps the rate of call attempts across all targets in calls
	// per second. Zero disables client-side rate limiting.
	RateLimit rate.Limit

	// Burst is the limiter bucket size. Defaults to 1 when RateLimit is set.
	Burst int

	Logger         logging.Logger
	Observer       Observer
	TracerProvider trace.TracerProvider
}

// FanOut sends one input to many targets through a core.Caller.
type FanOut struct {
	caller  core.Caller
	opts    Options
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// New creates a FanOut around caller.
func New(caller core.Caller, optFns ...func(o *Options)) *FanOut {
	opts := Options{
		Dispatcher: GroupDispatcher{},
		Retry:      DefaultRetryPolicy(),
		Logger:     logging.NoOpLogger{},
		Observer:   NoOpObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Observer == nil {
		opts.Observer = NoOpObserver{}
	}

	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	f := &FanOut{
		caller: caller,
		opts:   opts,
		tracer: opts.TracerProvider.Tracer(tracerName),
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}

		f.limiter = rate.NewLimiter(opts.RateLimit, burst)
	}

	return f
}

// callLogger is implemented by loggers that have a dedicated call helper,
// such as *logging.FanoutLogger.
type callLogger interface {
	LogCall(target, model string, dur time.Duration, success bool, err error)
}

// CallTarget performs one remote call to target and normalizes its outcome.
// It never returns an error and never panics: failures, including a panic
// inside the Caller or in an Observer or Logger hook, become an error result
// naming the target.
func (f *FanOut) CallTarget(ctx context.Context, target core.Target, input string) core.CallResult {
	return f.protectedCall(ctx, target, input, "execution")
}

// protectedCall runs callTarget and converts a panic escaping it into an
// error result that names the target and the phase. Observers still receive
// OnCallEnd for the converted result.
func (f *FanOut) protectedCall(ctx context.Context, target core.Target, input, phase string) (result core.CallResult) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		result = core.CallResult{
			TargetName:   target.Name,
			Model:        target.Model,
			ResponseText: fmt.Sprintf("Sorry, %s failed during %s.", target.Name, phase),
			Status:       core.StatusError,
		}

		f.notify("OnCallEnd", func() {
			f.opts.Logger.Error("Call panicked", "target", target.Name, "phase", phase, "panic", r)
			f.opts.Observer.OnCallEnd(ctx, result)
		})
	}()

	return f.callTarget(ctx, target, input)
}

// notify runs a hook. A panicking hook is logged and otherwise ignored.
func (f *FanOut) notify(hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			defer func() { _ = recover() }()

			f.opts.Logger.Error("Hook panicked", "hook", hook, "panic", r)
		}
	}()

	fn()
}

func (f *FanOut) callTarget(ctx context.Context, target core.Target, input string) core.CallResult {
	ctx, span := f.tracer.Start(ctx, "fanout.call", trace.WithAttributes(
		attribute.String("fanout.target", target.Name),
		attribute.String("fanout.model", target.Model),
	))
	defer span.End()

	f.opts.Observer.OnCallStart(ctx, target)

	start := time.Now()
	text, err := f.callWithRetry(ctx, target, input)
	dur := time.Since(start)

	var result core.CallResult
	if err != nil {
		result = core.NewErrorResult(target, err, dur)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		result = core.NewSuccessResult(target, text, dur)
	}

	span.SetAttributes(attribute.String("fanout.status", string(result.Status)))

	if cl, ok := f.opts.Logger.(callLogger); ok {
		cl.LogCall(target.Name, target.Model, dur, err == nil, err)
	} else if err != nil {
		f.opts.Logger.Warn("Call failed", "target", target.Name, "duration", dur, "error", err)
	} else {
		f.opts.Logger.Debug("Call succeeded", "target", target.Name, "duration", dur)
	}

	f.opts.Observer.OnCallEnd(ctx, result)

	return result
}

func (f *FanOut) callWithRetry(ctx context.Context, target core.Target, input string) (string, error) {
	attempts := f.opts.Retry.attempts()

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := f.opts.Retry.delay(attempt - 1)
			f.opts.Logger.Debug("Retrying call", "target", target.Name, "attempt", attempt, "delay", delay, "error", lastErr)

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limiter: %w", err)
			}
		}

		text, err := f.safeCall(ctx, target, input)
		if err == nil {
			return text, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

func (f *FanOut) safeCall(ctx context.Context, target core.Target, input string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if f.caller == nil {
		return "", fmt.Errorf("no caller configured")
	}

	return f.caller.Call(ctx, target, input)
}
