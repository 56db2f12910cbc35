package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/fanout"
	"github.com/hupe1980/agentfanout/model"
)

func TestRecorder_ObservesFanOut(t *testing.T) {
	rec := NewRecorder("")
	m := model.NewMockModel("mock").AddError("b", errors.New("timeout"))

	f := fanout.New(m, func(o *fanout.Options) { o.Observer = rec })
	report := f.Orchestrate(context.Background(), []core.Target{{Name: "a"}, {Name: "b"}}, "hi")
	require.Len(t, report, 2)

	assert.InDelta(t, 1, testutil.ToFloat64(rec.callsTotal.WithLabelValues("a", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.callsTotal.WithLabelValues("b", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.runsTotal.WithLabelValues("concurrent")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(rec.fallbacksTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.lastSuccesses), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(rec.callDuration))
}

func TestRecorder_Fallback(t *testing.T) {
	rec := NewRecorder("test")

	f := fanout.New(model.NewMockModel("mock"), func(o *fanout.Options) {
		o.Observer = rec
		o.Dispatcher = nil
	})
	f.Orchestrate(context.Background(), []core.Target{{Name: "a"}}, "hi")

	assert.InDelta(t, 1, testutil.ToFloat64(rec.fallbacksTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.runsTotal.WithLabelValues("sequential")), 0)
}

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := NewRecorder("")
	rec.OnCallEnd(context.Background(), core.CallResult{TargetName: "a", Status: core.StatusSuccess})

	path := filepath.Join(t.TempDir(), "fanout.prom")
	require.NoError(t, rec.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `agentfanout_calls_total{status="success",target="a"} 1`))
}

func TestRecorder_GatherCustomNamespace(t *testing.T) {
	rec := NewRecorder("custom")
	rec.OnFallback(context.Background(), errors.New("x"))

	n, err := testutil.GatherAndCount(rec.Registry(), "custom_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
