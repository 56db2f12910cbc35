// Package diagnostic inspects a hosted project and reports why a fan-out or
// workflow run is likely to fail.
package diagnostic

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/fanout"
	"github.com/hupe1980/agentfanout/foundry"
	"github.com/hupe1980/agentfanout/logging"
	"github.com/hupe1980/agentfanout/workflow"
)

// DefaultProbeInput is sent to agents during the connectivity check.
const DefaultProbeInput = "Hello, this is a connectivity test."

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Check names, in execution order.
const (
	CheckEnvironment  = "Environment configuration"
	CheckAgents       = "Deployed agents"
	CheckExpected     = "Expected agents"
	CheckWorkflow     = "Workflow agent references"
	CheckModels       = "Model deployments"
	CheckConnectivity = "Agent connectivity"
)

// AgentLister lists deployed agents. *foundry.Client implements it.
type AgentLister interface {
	ListAgents(ctx context.Context) ([]foundry.Agent, error)
}

// Options configure Run.
type Options struct {
	Endpoint string
	// Expected are the agents a run relies on (targets and coordinator).
	Expected []core.Target
	// WorkflowYAML, when set, is scanned for agent references.
	WorkflowYAML string
	// TestAll probes every expected deployed agent instead of only the first.
	TestAll    bool
	ProbeInput string
	Logger     logging.Logger
}

// Check is the result of one diagnostic step.
type Check struct {
	Name   string
	Status Status
	Detail string
	Items  []string
}

// Report aggregates all checks of one Run.
type Report struct {
	Checks     []Check
	Deployed   []foundry.Agent
	Missing    []string
	Mismatched []string
	Probes     core.ReportSet
}

// Healthy reports whether no check failed.
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}

	return true
}

// Check returns the named check.
func (r *Report) Check(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}

	return Check{}, false
}

func (r *Report) add(c Check) { r.Checks = append(r.Checks, c) }

// Run executes the checks in order. A failed environment or agent listing
// check ends the run early because later checks depend on them.
func Run(ctx context.Context, opts Options, lister AgentLister, caller core.Caller) *Report {
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.ProbeInput == "" {
		opts.ProbeInput = DefaultProbeInput
	}

	r := &Report{}

	if opts.Endpoint == "" {
		r.add(Check{Name: CheckEnvironment, Status: StatusFail, Detail: "PROJECT_ENDPOINT not found in environment"})
		return r
	}

	r.add(Check{Name: CheckEnvironment, Status: StatusPass, Detail: "PROJECT_ENDPOINT: " + opts.Endpoint})

	if !checkAgents(ctx, r, lister) {
		return r
	}

	deployed := map[string]foundry.Agent{}
	for _, a := range r.Deployed {
		deployed[a.Name] = a
	}

	checkExpected(r, opts.Expected, deployed)
	checkWorkflow(r, opts.WorkflowYAML, deployed)
	checkModels(r, opts.Expected, r.Deployed)
	checkConnectivity(ctx, r, opts, deployed, caller)

	opts.Logger.Info("Diagnostic finished", "healthy", r.Healthy(), "checks", len(r.Checks))

	return r
}

func checkAgents(ctx context.Context, r *Report, lister AgentLister) bool {
	if lister == nil {
		r.add(Check{Name: CheckAgents, Status: StatusFail, Detail: "no project connection"})
		return false
	}

	agents, err := lister.ListAgents(ctx)
	if err != nil {
		r.add(Check{Name: CheckAgents, Status: StatusFail, Detail: "error listing agents: " + err.Error()})
		return false
	}

	if len(agents) == 0 {
		r.add(Check{Name: CheckAgents, Status: StatusFail, Detail: "no agents found"})
		return false
	}

	r.Deployed = agents

	items := make([]string, len(agents))
	for i, a := range agents {
		items[i] = fmt.Sprintf("%s (id %s, version %s)", a.Name, a.ID, a.Version)
	}

	r.add(Check{Name: CheckAgents, Status: StatusPass, Detail: fmt.Sprintf("%d agents deployed", len(agents)), Items: items})

	return true
}

func checkExpected(r *Report, expected []core.Target, deployed map[string]foundry.Agent) {
	if len(expected) == 0 {
		r.add(Check{Name: CheckExpected, Status: StatusSkip, Detail: "no expected agents configured"})
		return
	}

	items := make([]string, 0, len(expected))

	for _, t := range expected {
		if _, ok := deployed[t.Name]; ok {
			items = append(items, "✅ "+t.Name)
			continue
		}

		items = append(items, "❌ "+t.Name+" (missing)")
		r.Missing = append(r.Missing, t.Name)
	}

	if len(r.Missing) > 0 {
		r.add(Check{Name: CheckExpected, Status: StatusFail, Detail: "missing agents: " + strings.Join(r.Missing, ", "), Items: items})
		return
	}

	r.add(Check{Name: CheckExpected, Status: StatusPass, Detail: "all expected agents exist", Items: items})
}

func checkWorkflow(r *Report, yamlText string, deployed map[string]foundry.Agent) {
	if yamlText == "" {
		r.add(Check{Name: CheckWorkflow, Status: StatusSkip, Detail: "no workflow to inspect"})
		return
	}

	refs, err := workflow.ReferencedAgents(yamlText)
	if err != nil {
		r.add(Check{Name: CheckWorkflow, Status: StatusFail, Detail: err.Error()})
		return
	}

	items := make([]string, 0, len(refs))

	for _, name := range refs {
		if _, ok := deployed[name]; ok {
			items = append(items, "✅ "+name)
			continue
		}

		items = append(items, "❌ "+name+" (missing, workflow will fail)")
		r.Mismatched = append(r.Mismatched, name)
	}

	if len(r.Mismatched) > 0 {
		r.add(Check{Name: CheckWorkflow, Status: StatusFail, Detail: "workflow references agents that are not deployed", Items: items})
		return
	}

	r.add(Check{Name: CheckWorkflow, Status: StatusPass, Detail: fmt.Sprintf("all %d referenced agents exist", len(refs)), Items: items})
}

func checkModels(r *Report, expected []core.Target, deployed []foundry.Agent) {
	var models []string

	for _, t := range expected {
		if t.Model != "" && !slices.Contains(models, t.Model) {
			models = append(models, t.Model)
		}
	}

	if len(models) == 0 {
		r.add(Check{Name: CheckModels, Status: StatusSkip, Detail: "no model labels configured"})
		return
	}

	used := map[string]bool{}
	for _, a := range deployed {
		used[a.Model] = true
	}

	items := make([]string, len(models))
	unseen := 0

	for i, m := range models {
		if used[m] {
			items[i] = m + " (used by a deployed agent)"
			continue
		}

		items[i] = m + " (verify this deployment exists in the portal)"
		unseen++
	}

	if unseen > 0 {
		r.add(Check{Name: CheckModels, Status: StatusWarn, Detail: "some model deployments could not be confirmed", Items: items})
		return
	}

	r.add(Check{Name: CheckModels, Status: StatusPass, Detail: "all model deployments are in use", Items: items})
}

func checkConnectivity(ctx context.Context, r *Report, opts Options, deployed map[string]foundry.Agent, caller core.Caller) {
	if caller == nil {
		r.add(Check{Name: CheckConnectivity, Status: StatusSkip, Detail: "no caller configured"})
		return
	}

	var probes []core.Target

	for _, t := range opts.Expected {
		if _, ok := deployed[t.Name]; ok {
			probes = append(probes, t)
		}
	}

	if len(probes) == 0 {
		a := r.Deployed[0]
		probes = []core.Target{{Name: a.Name, Model: a.Model}}
	}

	if !opts.TestAll {
		probes = probes[:1]
	}

	r.Probes = fanout.New(caller, func(o *fanout.Options) { o.Logger = opts.Logger }).
		FanOutSequential(ctx, probes, opts.ProbeInput)

	items := make([]string, len(r.Probes))
	for i, p := range r.Probes {
		if p.IsSuccess() {
			items[i] = fmt.Sprintf("✅ %s: %s", p.TargetName, preview(p.ResponseText, 100))
			continue
		}

		items[i] = "❌ " + p.ResponseText
	}

	if r.Probes.Failures() > 0 {
		r.add(Check{Name: CheckConnectivity, Status: StatusFail, Detail: "may indicate model deployment or permission issues", Items: items})
		return
	}

	r.add(Check{Name: CheckConnectivity, Status: StatusPass, Detail: fmt.Sprintf("%d agents answered", len(r.Probes)), Items: items})
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "..."
}
