// Package metrics exports fan-out statistics as Prometheus metrics.
//
// Recorder implements fanout.Observer and owns a private registry, so several
// recorders can coexist (e.g. in tests) and a CLI run can dump its metrics to
// a node-exporter textfile.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/fanout"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "agentfanout"

// Recorder collects call and orchestration metrics.
type Recorder struct {
	registry *prometheus.Registry

	callsTotal     *prometheus.CounterVec
	callDuration   *prometheus.HistogramVec
	fallbacksTotal prometheus.Counter
	runsTotal      *prometheus.CounterVec
	lastSuccesses  prometheus.Gauge
}

var _ fanout.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry. An empty namespace
// selects DefaultNamespace.
func NewRecorder(namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		callsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of target calls by outcome",
			},
			[]string{"target", "status"},
		),
		callDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Target call duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"target"},
		),
		fallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Number of times the concurrent strategy was unavailable",
			},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orchestrations_total",
				Help:      "Completed fan-out runs by strategy",
			},
			[]string{"strategy"},
		),
		lastSuccesses: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_successes",
				Help:      "Number of successful calls in the most recent run",
			},
		),
	}
}

// Registry exposes the underlying registry, e.g. for promhttp handlers.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// OnCallStart implements fanout.Observer.
func (r *Recorder) OnCallStart(context.Context, core.Target) {}

// OnCallEnd implements fanout.Observer.
func (r *Recorder) OnCallEnd(_ context.Context, result core.CallResult) {
	r.callsTotal.WithLabelValues(result.TargetName, string(result.Status)).Inc()
	r.callDuration.WithLabelValues(result.TargetName).Observe(result.Duration.Seconds())
}

// OnFallback implements fanout.Observer.
func (r *Recorder) OnFallback(context.Context, error) {
	r.fallbacksTotal.Inc()
}

// OnComplete implements fanout.Observer.
func (r *Recorder) OnComplete(_ context.Context, strategy fanout.Strategy, report core.ReportSet) {
	r.runsTotal.WithLabelValues(string(strategy)).Inc()
	r.lastSuccesses.Set(float64(report.Successes()))
}

// WriteTextfile writes all metrics in the text exposition format to path
// (atomically, via a temporary file).
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}

	return nil
}
