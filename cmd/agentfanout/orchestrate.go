package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentfanout"
	"github.com/hupe1980/agentfanout/config"
	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/fanout"
	"github.com/hupe1980/agentfanout/metrics"
)

// errAllFailed makes the process exit non-zero when no target answered.
var errAllFailed = errors.New("all targets failed")

// OrchestrateCmd fans one input out to every configured target.
type OrchestrateCmd struct {
	Input          string        `short:"i" help:"Prompt sent to every target (defaults to the configured input)."`
	Backend        string        `short:"b" help:"Backend answering the calls (foundry, openai, anthropic, mock)."`
	MaxConcurrency int           `name:"max-concurrency" help:"Maximum number of in-flight calls (0 = unbounded)."`
	Retries        int           `help:"Additional attempts per failing call."`
	RetryDelay     time.Duration `name:"retry-delay" help:"Delay before the first retry."`
	Rate           float64       `help:"Maximum call attempts per second across all targets (0 = unlimited)."`
	Sequential     bool          `help:"Disable the concurrent strategy."`
	Summarize      bool          `help:"Ask the coordinator to summarize the report."`
	MetricsFile    string        `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the run." type:"path"`
	Trace          bool          `help:"Print OpenTelemetry spans to stderr."`
}

func (c *OrchestrateCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, err := cli.load()
	if err != nil {
		return err
	}

	c.merge(cfg.Orchestration)

	if err := cfg.Validate(c.Backend); err != nil {
		return err
	}

	caller, err := newCaller(cfg, c.Backend, logger)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder("")

	fanOptFns := []func(o *fanout.Options){
		func(o *fanout.Options) {
			o.MaxConcurrency = c.MaxConcurrency
			o.Retry = fanout.DefaultRetryPolicy().WithRetries(c.Retries)
			o.RateLimit = rate.Limit(c.Rate)
			o.Observer = recorder

			if c.RetryDelay > 0 {
				o.Retry.InitialDelay = c.RetryDelay
			}

			if c.Sequential {
				o.Dispatcher = nil
			}
		},
	}

	if c.Trace {
		tp, err := newStdoutTracerProvider()
		if err != nil {
			return err
		}

		defer func() { _ = tp.Shutdown(context.Background()) }()

		fanOptFns = append(fanOptFns, func(o *fanout.Options) { o.TracerProvider = tp })
	}

	var coordinator *core.Target
	if c.Summarize {
		coordinator = cfg.Coordinator
	}

	af := agentfanout.New(caller, func(o *agentfanout.Options) {
		o.Targets = cfg.Targets
		o.Coordinator = coordinator
		o.FanoutOptions = fanOptFns
		o.Logger = logger
	})

	out := cli.out()

	fmt.Fprintf(out, "🚀 Starting multi-agent orchestration for: '%s'\n", c.Input)
	fmt.Fprintf(out, "Using backend: %s (%s)\n", caller.Info().Provider, caller.Info().Name)

	res, err := af.Run(ctx, c.Input)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, res.Formatted)

	if res.Summary != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "🎯 Coordinator Summary:")
		fmt.Fprintln(out, strings.Repeat("-", 40))
		fmt.Fprintln(out, res.Summary.ResponseText)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Coordination Results: %s\n", res.Report.Summary())

	if c.MetricsFile != "" {
		if err := recorder.WriteTextfile(c.MetricsFile); err != nil {
			return err
		}
	}

	if res.Report.AllFailed() {
		return errAllFailed
	}

	return nil
}

// merge fills unset flags from the configuration.
func (c *OrchestrateCmd) merge(o config.Orchestration) {
	if c.Backend == "" {
		c.Backend = o.Backend
	}

	if c.Input == "" {
		c.Input = o.Input
	}

	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = o.MaxConcurrency
	}

	if c.Retries == 0 {
		c.Retries = o.Retries
	}

	if c.RetryDelay == 0 {
		c.RetryDelay = o.RetryDelay
	}

	if c.Rate == 0 {
		c.Rate = o.RateLimit
	}

	c.Summarize = c.Summarize || o.Summarize
}

func newStdoutTracerProvider() (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)), nil
}
