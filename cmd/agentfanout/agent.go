package main

import (
	"fmt"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/fanout"
	"github.com/hupe1980/agentfanout/foundry"
)

// AgentCmd groups the prompt agent commands.
type AgentCmd struct {
	Create AgentCreateCmd `cmd:"" help:"Create a new version of every configured prompt agent."`
	Invoke AgentInvokeCmd `cmd:"" help:"Send one input to a single hosted agent."`
	List   AgentListCmd   `cmd:"" help:"List the agents deployed in the project."`
}

// AgentCreateCmd creates the targets, the coordinator and the optional
// general purpose agent.
type AgentCreateCmd struct{}

func (c *AgentCreateCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, err := cli.load()
	if err != nil {
		return err
	}

	client, err := newFoundryClient(cfg, logger)
	if err != nil {
		return err
	}

	agents := append([]core.Target{}, cfg.Targets...)
	if cfg.Coordinator != nil {
		agents = append(agents, *cfg.Coordinator)
	}

	if extra, ok := cfg.ExtraAgent(); ok {
		agents = append(agents, extra)
	}

	out := cli.out()
	fmt.Fprintf(out, "Using PROJECT_ENDPOINT: %s\n", client.Endpoint())

	for _, t := range agents {
		def := foundry.PromptAgentDefinition{Model: t.Model, Instructions: t.Instructions}

		v, err := client.CreateAgentVersion(ctx, t.Name, def, "")
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Agent created (id: %s, name: %s, version: %s)\n", v.ID, v.Name, v.Version)
	}

	return nil
}

// AgentInvokeCmd calls one hosted agent through a fresh conversation.
type AgentInvokeCmd struct {
	Name  string `arg:"" help:"Agent name."`
	Input string `arg:"" help:"Input sent to the agent."`
}

func (c *AgentInvokeCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, err := cli.load()
	if err != nil {
		return err
	}

	client, err := newFoundryClient(cfg, logger)
	if err != nil {
		return err
	}

	target := core.Target{Name: c.Name}
	if t, ok := core.FindTarget(cfg.Targets, c.Name); ok {
		target = t
	}

	f := fanout.New(foundry.NewAgentCaller(client), func(o *fanout.Options) { o.Logger = logger })

	res := f.CallTarget(ctx, target, c.Input)
	fmt.Fprintf(cli.out(), "Response output: %s\n", res.ResponseText)

	if !res.IsSuccess() {
		return errAllFailed
	}

	return nil
}

// AgentListCmd prints every deployed agent.
type AgentListCmd struct{}

func (c *AgentListCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, err := cli.load()
	if err != nil {
		return err
	}

	client, err := newFoundryClient(cfg, logger)
	if err != nil {
		return err
	}

	agents, err := client.ListAgents(ctx)
	if err != nil {
		return err
	}

	out := cli.out()
	fmt.Fprintf(out, "Found %d agents:\n", len(agents))

	for _, a := range agents {
		detail := a.Kind
		if a.Model != "" {
			detail += ", model " + a.Model
		}

		fmt.Fprintf(out, "  • %s (version %s, %s)\n", a.Name, a.Version, detail)
	}

	return nil
}
