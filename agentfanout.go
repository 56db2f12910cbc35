// Package agentfanout provides a high-level façade over the fan-out core:
// one input is sent to every configured target, the answers are collected
// into an ordered report, rendered, and optionally summarized by a
// coordinator target. Most applications interact with this package by:
//  1. Choosing a backend (foundry.AgentCaller, model/openai, model/anthropic or model.MockModel)
//  2. Creating an AgentFanout via New() with the targets to call
//  3. Calling Run for every input
//
// The façade delegates dispatching to fanout.FanOut while keeping setup and
// usage ergonomics concise.
package agentfanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/fanout"
	"github.com/hupe1980/agentfanout/internal/util"
	"github.com/hupe1980/agentfanout/logging"
)

// DefaultSummaryTemplate is the coordinator prompt. It can reference
// {{.Report}} (formatted report), {{.Input}} and {{.Summary}} (n/m line).
const DefaultSummaryTemplate = "Summarize this multi-agent coordination result: {{.Report}}"

// ErrNoTargets is returned by Run when no targets are configured.
var ErrNoTargets = errors.New("agentfanout: no targets configured")

// Options configures the AgentFanout instance.
type Options struct {
	// Targets are called for every input, in this order.
	Targets []core.Target

	// Coordinator, when set, receives the formatted report and answers with
	// a summary. Its failure never fails the run.
	Coordinator *core.Target

	// SummaryTemplate renders the coordinator input (text/template).
	SummaryTemplate string

	// Formatter renders the report.
	Formatter fanout.Formatter

	// FanoutOptions are applied to the underlying fanout.FanOut.
	FanoutOptions []func(o *fanout.Options)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// RunResult is the outcome of one Run.
type RunResult struct {
	ID        string
	Input     string
	Report    core.ReportSet
	Formatted string
	// Summary is the coordinator answer, nil without coordinator.
	Summary  *core.CallResult
	Duration time.Duration
}

// AgentFanout is the high-level façade over a caller and its targets.
type AgentFanout struct {
	caller core.Caller
	opts   Options
}

// New creates a new AgentFanout around caller.
func New(caller core.Caller, optFns ...func(o *Options)) *AgentFanout {
	opts := Options{
		SummaryTemplate: DefaultSummaryTemplate,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &AgentFanout{caller: caller, opts: opts}
}

// Targets returns the configured targets.
func (a *AgentFanout) Targets() []core.Target { return a.opts.Targets }

// Run fans input out to all targets and returns the collected report. The
// only error is a configuration error; individual call failures are part
// of the report.
func (a *AgentFanout) Run(ctx context.Context, input string) (*RunResult, error) {
	if len(a.opts.Targets) == 0 {
		return nil, ErrNoTargets
	}

	start := time.Now()
	id := util.NewID()

	logger := a.opts.Logger
	if fl, ok := logger.(*logging.FanoutLogger); ok {
		fl = fl.WithRun(id)
		defer fl.StartTimer("run")()

		logger = fl
	}

	fanOptFns := append([]func(o *fanout.Options){}, a.opts.FanoutOptions...)
	fanOptFns = append(fanOptFns, func(o *fanout.Options) { o.Logger = logger })

	f := fanout.New(a.caller, fanOptFns...)

	logger.Info("Starting multi-agent orchestration", "input", input, "targets", len(a.opts.Targets))

	report := f.Orchestrate(ctx, a.opts.Targets, input)

	res := &RunResult{
		ID:        id,
		Input:     input,
		Report:    report,
		Formatted: a.opts.Formatter.Format(report),
	}

	if a.opts.Coordinator != nil {
		// The coordinator is not a fan-out target; keep it out of observer
		// statistics.
		coordinator := fanout.New(a.caller, append(fanOptFns, func(o *fanout.Options) {
			o.Observer = fanout.NoOpObserver{}
		})...)

		summary, err := a.summarize(ctx, coordinator, input, res)
		if err != nil {
			return nil, err
		}

		res.Summary = summary
	}

	res.Duration = time.Since(start)

	return res, nil
}

func (a *AgentFanout) summarize(ctx context.Context, f *fanout.FanOut, input string, res *RunResult) (*core.CallResult, error) {
	prompt, err := util.RenderTemplate(a.opts.SummaryTemplate, map[string]any{
		"Report":  res.Formatted,
		"Input":   input,
		"Summary": res.Report.Summary(),
	})
	if err != nil {
		return nil, fmt.Errorf("agentfanout: render summary template: %w", err)
	}

	summary := f.CallTarget(ctx, *a.opts.Coordinator, prompt)

	return &summary, nil
}
