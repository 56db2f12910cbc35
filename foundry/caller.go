package foundry

import (
	"context"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/model"
)

// AgentCaller invokes hosted agents by target name. Each call opens a fresh
// conversation so concurrent calls never share remote state.
type AgentCaller struct {
	client *Client
}

// NewAgentCaller returns a core.Caller backed by client.
func NewAgentCaller(client *Client) *AgentCaller {
	return &AgentCaller{client: client}
}

// Call implements core.Caller.
func (a *AgentCaller) Call(ctx context.Context, target core.Target, input string) (string, error) {
	conv, err := a.client.CreateConversation(ctx)
	if err != nil {
		return "", err
	}

	return a.client.Respond(ctx, target.Name, conv.ID, input)
}

// Info implements model.Model.
func (a *AgentCaller) Info() model.Info {
	return model.Info{Name: a.client.Endpoint(), Provider: "foundry"}
}
