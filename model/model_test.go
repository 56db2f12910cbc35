package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentfanout/core"
)

func TestMockModel_Call(t *testing.T) {
	m := NewMockModel("mock").
		AddResponse("agent-a", "story-A").
		AddError("agent-b", errors.New("timeout"))

	ctx := context.Background()

	out, err := m.Call(ctx, core.Target{Name: "agent-a"}, "hi")
	require.NoError(t, err)
	assert.Equal(t, "story-A", out)

	_, err = m.Call(ctx, core.Target{Name: "agent-b"}, "hi")
	assert.EqualError(t, err, "timeout")

	out, err = m.Call(ctx, core.Target{Name: "agent-c"}, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Mock response from agent-c to: hi", out)

	calls := m.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, Call{Target: "agent-a", Input: "hi"}, calls[0])
	assert.Equal(t, "agent-c", calls[2].Target)
}

func TestMockModel_DelayHonorsContext(t *testing.T) {
	m := NewMockModel("mock").SetDelay("slow", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Call(ctx, core.Target{Name: "slow"}, "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockModel_Panic(t *testing.T) {
	m := NewMockModel("mock").AddPanic("boom", "kaboom")

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = m.Call(context.Background(), core.Target{Name: "boom"}, "hi")
	})
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("dry-run")
	assert.Equal(t, Info{Name: "dry-run", Provider: "mock"}, m.Info())

	var _ Model = m
}
