package core

import (
	"fmt"
	"time"
)

// Status is the outcome tag of a single call.
type Status string

const (
	// StatusSuccess marks a call that returned remote output.
	StatusSuccess Status = "success"
	// StatusError marks a call that failed; ResponseText holds a synthesized message.
	StatusError Status = "error"
)

// CallResult is the normalized outcome of one call to one Target. It is
// created once per call attempt and never mutated afterwards.
type CallResult struct {
	TargetName   string        `json:"agent"`
	Model        string        `json:"model"`
	ResponseText string        `json:"response"`
	Status       Status        `json:"status"`
	Duration     time.Duration `json:"duration,omitempty"`
}

// NewSuccessResult builds a success result for target.
func NewSuccessResult(target Target, text string, d time.Duration) CallResult {
	return CallResult{TargetName: target.Name, Model: target.Model, ResponseText: text, Status: StatusSuccess, Duration: d}
}

// NewErrorResult builds an error result for target. The message embeds the
// target name and the error text.
func NewErrorResult(target Target, err error, d time.Duration) CallResult {
	return CallResult{
		TargetName:   target.Name,
		Model:        target.Model,
		ResponseText: fmt.Sprintf("Sorry, %s is currently unavailable. Error: %v", target.Name, err),
		Status:       StatusError,
		Duration:     d,
	}
}

// IsSuccess reports whether the call succeeded.
func (r CallResult) IsSuccess() bool { return r.Status == StatusSuccess }

// ReportSet is the ordered collection of CallResults for one orchestration
// run: one element per Target, in Target declaration order.
type ReportSet []CallResult

// Successes counts success results.
func (rs ReportSet) Successes() int {
	n := 0

	for _, r := range rs {
		if r.IsSuccess() {
			n++
		}
	}

	return n
}

// Failures counts error results.
func (rs ReportSet) Failures() int { return len(rs) - rs.Successes() }

// AllFailed reports whether a non-empty report holds no success at all.
// Whether that constitutes an overall failure is left to the caller.
func (rs ReportSet) AllFailed() bool { return len(rs) > 0 && rs.Successes() == 0 }

// Summary renders "n/m agents responded successfully".
func (rs ReportSet) Summary() string {
	return fmt.Sprintf("%d/%d agents responded successfully", rs.Successes(), len(rs))
}

// Clone returns a copy of the report that shares no backing array.
func (rs ReportSet) Clone() ReportSet {
	if rs == nil {
		return nil
	}

	out := make(ReportSet, len(rs))
	copy(out, rs)

	return out
}
