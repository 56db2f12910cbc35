package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/agentfanout/config"
	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/fanout"
	"github.com/hupe1980/agentfanout/foundry"
	"github.com/hupe1980/agentfanout/workflow"
)

// WorkflowCmd groups the workflow agent commands.
type WorkflowCmd struct {
	Render WorkflowRenderCmd `cmd:"" help:"Print the workflow YAML."`
	Create WorkflowCreateCmd `cmd:"" help:"Deploy the workflow agent."`
}

// WorkflowRenderCmd prints the generated workflow document.
type WorkflowRenderCmd struct {
	NoCoordinator bool `name:"no-coordinator" help:"Omit the coordinator evaluation step."`
}

func (c *WorkflowRenderCmd) Run(cli *CLI) error {
	cfg, _, err := cli.load()
	if err != nil {
		return err
	}

	text, err := renderWorkflow(cfg, !c.NoCoordinator)
	if err != nil {
		return err
	}

	fmt.Fprint(cli.out(), text)

	return nil
}

// WorkflowCreateCmd deploys the workflow agent after checking that every
// agent it references exists, and optionally runs it once.
type WorkflowCreateCmd struct {
	NoCoordinator bool   `name:"no-coordinator" help:"Omit the coordinator evaluation step."`
	RunInput      string `name:"run" help:"Send this input to the workflow agent after creating it." placeholder:"INPUT"`
}

func (c *WorkflowCreateCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, err := cli.load()
	if err != nil {
		return err
	}

	text, err := renderWorkflow(cfg, !c.NoCoordinator)
	if err != nil {
		return err
	}

	client, err := newFoundryClient(cfg, logger)
	if err != nil {
		return err
	}

	out := cli.out()

	deployed, err := client.ListAgents(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(deployed))
	for _, a := range deployed {
		names = append(names, a.Name)
	}

	referenced, err := workflow.ReferencedAgents(text)
	if err != nil {
		return err
	}

	var missing []string

	for _, name := range referenced {
		if !slices.Contains(names, name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("workflow references agents that are not deployed: %s (run: agentfanout agent create)",
			strings.Join(missing, ", "))
	}

	fmt.Fprintf(out, "✅ All %d referenced agents are deployed\n", len(referenced))

	v, err := client.CreateAgentVersion(ctx, cfg.Workflow.Name, foundry.WorkflowAgentDefinition{Workflow: text},
		"Multi-agent storytelling workflow")
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Workflow agent created (id: %s, name: %s, version: %s)\n", v.ID, v.Name, v.Version)

	if c.RunInput == "" {
		return nil
	}

	f := fanout.New(foundry.NewAgentCaller(client), func(o *fanout.Options) { o.Logger = logger })

	res := f.CallTarget(ctx, core.Target{Name: v.Name}, c.RunInput)
	fmt.Fprintf(out, "\n%s\n", res.ResponseText)

	if !res.IsSuccess() {
		return errAllFailed
	}

	return nil
}

func renderWorkflow(cfg *config.Config, withCoordinator bool) (string, error) {
	w, err := workflow.Build(cfg.Targets, func(o *workflow.Options) {
		if cfg.Workflow.Name != "" {
			o.Name = cfg.Workflow.Name
		}

		if withCoordinator {
			o.Coordinator = cfg.Coordinator
		}
	})
	if err != nil {
		return "", err
	}

	return w.YAML()
}
