package testutil

import (
	"errors"

	"github.com/hupe1980/agentfanout/core"
)

// ReportBuilder provides a fluent helper for constructing report sets.
// Example:
//
//	rs := NewReportBuilder().Success("A", "m1", "story").Failure("B", "m2", "timeout").Build()
type ReportBuilder struct {
	results core.ReportSet
}

// NewReportBuilder creates an empty builder.
func NewReportBuilder() *ReportBuilder { return &ReportBuilder{} }

// Success appends a success result (chainable).
func (b *ReportBuilder) Success(name, model, text string) *ReportBuilder {
	b.results = append(b.results, core.NewSuccessResult(core.Target{Name: name, Model: model}, text, 0))
	return b
}

// Failure appends an error result whose message embeds errText (chainable).
func (b *ReportBuilder) Failure(name, model, errText string) *ReportBuilder {
	b.results = append(b.results, core.NewErrorResult(core.Target{Name: name, Model: model}, errors.New(errText), 0))
	return b
}

// Build returns a copy of the accumulated report.
func (b *ReportBuilder) Build() core.ReportSet {
	out := make(core.ReportSet, len(b.results))
	copy(out, b.results)

	return out
}
