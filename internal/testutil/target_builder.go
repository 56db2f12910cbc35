package testutil

import (
	"github.com/hupe1980/agentfanout/core"
)

// TargetBuilder helps construct targets with fluent chaining for tests.
// Example:
//
//	tgt := NewTargetBuilder("agent-gpt").Model("gpt-5.2").Instructions("Tell stories").Build()
type TargetBuilder struct {
	target core.Target
}

// NewTargetBuilder creates a builder for a target with the given name and a
// model label derived from it.
func NewTargetBuilder(name string) *TargetBuilder {
	return &TargetBuilder{target: core.Target{Name: name, Model: "model-" + name}}
}

// Model sets the advisory model label (chainable).
func (b *TargetBuilder) Model(m string) *TargetBuilder { b.target.Model = m; return b }

// Instructions sets the provisioning instructions (chainable).
func (b *TargetBuilder) Instructions(i string) *TargetBuilder { b.target.Instructions = i; return b }

// Build returns the target.
func (b *TargetBuilder) Build() core.Target { return b.target }

// Targets builds one target per name using builder defaults.
func Targets(names ...string) []core.Target {
	out := make([]core.Target, len(names))
	for i, n := range names {
		out[i] = NewTargetBuilder(n).Build()
	}

	return out
}
