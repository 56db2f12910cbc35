package foundry

import (
	"context"
	"encoding/json"
	"net/url"
)

// Agent kinds understood by the service.
const (
	KindPrompt   = "prompt"
	KindWorkflow = "workflow"
)

// AgentDefinition describes what a hosted agent version does.
type AgentDefinition interface {
	// Kind returns the definition discriminator sent to the service.
	Kind() string
}

// PromptAgentDefinition is a single-model agent with fixed instructions.
type PromptAgentDefinition struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions,omitempty"`
}

// Kind implements AgentDefinition.
func (PromptAgentDefinition) Kind() string { return KindPrompt }

// MarshalJSON adds the kind discriminator.
func (d PromptAgentDefinition) MarshalJSON() ([]byte, error) {
	type plain PromptAgentDefinition

	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: KindPrompt, plain: plain(d)})
}

// WorkflowAgentDefinition is an agent driven by a declarative workflow (YAML).
type WorkflowAgentDefinition struct {
	Workflow string `json:"workflow"`
}

// Kind implements AgentDefinition.
func (WorkflowAgentDefinition) Kind() string { return KindWorkflow }

// MarshalJSON adds the kind discriminator.
func (d WorkflowAgentDefinition) MarshalJSON() ([]byte, error) {
	type plain WorkflowAgentDefinition

	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: KindWorkflow, plain: plain(d)})
}

// AgentVersion identifies one created version of an agent.
type AgentVersion struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Agent is a deployed agent as reported by ListAgents.
type Agent struct {
	ID      string
	Name    string
	Version string
	Kind    string
	// Model is empty for workflow agents.
	Model string
}

type createAgentVersionRequest struct {
	Definition  AgentDefinition `json:"definition"`
	Description string          `json:"description,omitempty"`
}

// CreateAgentVersion creates a new version of the named agent, creating the
// agent itself on first use.
func (c *Client) CreateAgentVersion(ctx context.Context, name string, def AgentDefinition, description string) (*AgentVersion, error) {
	var out AgentVersion

	body := createAgentVersionRequest{Definition: def, Description: description}
	if err := c.oai.Post(ctx, "agents/"+url.PathEscape(name)+"/versions", body, &out, c.projectScoped()); err != nil {
		return nil, wrapErr("create agent version "+name, err)
	}

	if out.Name == "" {
		out.Name = name
	}

	c.opts.Logger.Info("Agent version created", "agent", out.Name, "version", out.Version, "kind", def.Kind())

	return &out, nil
}

type agentListResponse struct {
	Data []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Versions struct {
			Latest struct {
				Version    string `json:"version"`
				Definition struct {
					Kind  string `json:"kind"`
					Model string `json:"model"`
				} `json:"definition"`
			} `json:"latest"`
		} `json:"versions"`
	} `json:"data"`
	HasMore bool   `json:"has_more"`
	LastID  string `json:"last_id"`
}

// ListAgents returns every deployed agent with its latest version, following
// pagination until the listing is exhausted.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent

	after := ""

	for {
		path := "agents"
		if after != "" {
			path += "?after=" + url.QueryEscape(after)
		}

		var page agentListResponse
		if err := c.oai.Get(ctx, path, nil, &page, c.projectScoped()); err != nil {
			return nil, wrapErr("list agents", err)
		}

		for _, a := range page.Data {
			latest := a.Versions.Latest
			agents = append(agents, Agent{
				ID:      a.ID,
				Name:    a.Name,
				Version: latest.Version,
				Kind:    latest.Definition.Kind,
				Model:   latest.Definition.Model,
			})
		}

		if !page.HasMore || page.LastID == "" || page.LastID == after {
			return agents, nil
		}

		after = page.LastID
	}
}
