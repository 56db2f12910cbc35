package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorResult_EmbedsNameAndError(t *testing.T) {
	target := Target{Name: "agent-b", Model: "m2"}

	res := NewErrorResult(target, errors.New("timeout"), time.Second)

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "agent-b", res.TargetName)
	assert.Equal(t, "m2", res.Model)
	assert.Contains(t, res.ResponseText, "agent-b")
	assert.Contains(t, res.ResponseText, "timeout")
	assert.False(t, res.IsSuccess())
}

func TestReportSet_Counts(t *testing.T) {
	a := Target{Name: "a", Model: "m1"}
	b := Target{Name: "b", Model: "m2"}

	tests := []struct {
		name      string
		report    ReportSet
		successes int
		allFailed bool
		summary   string
	}{
		{"empty", ReportSet{}, 0, false, "0/0 agents responded successfully"},
		{"mixed", ReportSet{NewSuccessResult(a, "x", 0), NewErrorResult(b, errors.New("e"), 0)}, 1, false, "1/2 agents responded successfully"},
		{"all failed", ReportSet{NewErrorResult(a, errors.New("e"), 0), NewErrorResult(b, errors.New("e"), 0)}, 0, true, "0/2 agents responded successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.successes, tt.report.Successes())
			assert.Equal(t, len(tt.report)-tt.successes, tt.report.Failures())
			assert.Equal(t, tt.allFailed, tt.report.AllFailed())
			assert.Equal(t, tt.summary, tt.report.Summary())
		})
	}
}

func TestTargetHelpers(t *testing.T) {
	targets := []Target{{Name: "agent-gpt", Model: "gpt-5.2"}, {Name: "agent-mistral"}}

	assert.Equal(t, []string{"agent-gpt", "agent-mistral"}, TargetNames(targets))
	assert.Equal(t, "agent-gpt (gpt-5.2)", targets[0].String())
	assert.Equal(t, "agent-mistral", targets[1].String())

	found, ok := FindTarget(targets, "AGENT-GPT")
	assert.True(t, ok)
	assert.Equal(t, "gpt-5.2", found.Model)

	_, ok = FindTarget(targets, "agent-none")
	assert.False(t, ok)
}

func TestCallerFunc(t *testing.T) {
	var c Caller = CallerFunc(func(_ context.Context, target Target, input string) (string, error) {
		return target.Name + ":" + input, nil
	})

	out, err := c.Call(context.Background(), Target{Name: "a"}, "hello")
	assert.NoError(t, err)
	assert.Equal(t, "a:hello", out)
}
