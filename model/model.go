package model

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentfanout/core"
)

// Info contains metadata about a model backend implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "foundry", "mock", etc.
}

// Model is a core.Caller that can describe itself.
type Model interface {
	core.Caller

	// Info returns information about the backend implementation.
	Info() Info
}

// Call records one invocation of a MockModel.
type Call struct {
	Target string
	Input  string
}

type script struct {
	response string
	err      error
	panicVal any
	delay    time.Duration
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Behavior is scripted per target name; unscripted targets echo the input.
// It is safe for concurrent use.
type MockModel struct {
	info Info

	mu      sync.Mutex
	scripts map[string]*script
	calls   []Call
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:    Info{Name: name, Provider: "mock"},
		scripts: make(map[string]*script),
	}
}

func (m *MockModel) scriptFor(target string) *script {
	s, ok := m.scripts[target]
	if !ok {
		s = &script{}
		m.scripts[target] = s
	}

	return s
}

// AddResponse registers a deterministic canned response for a target.
func (m *MockModel) AddResponse(target, response string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scriptFor(target).response = response

	return m
}

// AddError makes every call to target fail with err.
func (m *MockModel) AddError(target string, err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scriptFor(target).err = err

	return m
}

// AddPanic makes every call to target panic with v.
func (m *MockModel) AddPanic(target string, v any) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scriptFor(target).panicVal = v

	return m
}

// SetDelay delays every call to target by d (honoring context cancellation).
func (m *MockModel) SetDelay(target string, d time.Duration) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scriptFor(target).delay = d

	return m
}

// Calls returns a snapshot of the recorded invocations in call order.
func (m *MockModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Call, len(m.calls))
	copy(out, m.calls)

	return out
}

// Call implements core.Caller.
func (m *MockModel) Call(ctx context.Context, target core.Target, input string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Target: target.Name, Input: input})

	var s script
	if sc, ok := m.scripts[target.Name]; ok {
		s = *sc
	}
	m.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}

	if s.panicVal != nil {
		panic(s.panicVal)
	}

	if s.err != nil {
		return "", s.err
	}

	if s.response != "" {
		return s.response, nil
	}

	return fmt.Sprintf("Mock response from %s to: %s", target.Name, input), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
