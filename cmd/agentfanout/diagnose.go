package main

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/diagnostic"
	"github.com/hupe1980/agentfanout/foundry"
)

// DiagnoseCmd runs the project diagnostic.
type DiagnoseCmd struct {
	All bool `help:"Probe every expected agent instead of only the first."`
}

func (c *DiagnoseCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, logger, err := cli.load()
	if err != nil {
		return err
	}

	expected := append([]core.Target{}, cfg.Targets...)
	if cfg.Coordinator != nil {
		expected = append(expected, *cfg.Coordinator)
	}

	opts := diagnostic.Options{
		Endpoint: cfg.Project.Endpoint,
		Expected: expected,
		TestAll:  c.All,
		Logger:   logger,
	}

	if text, err := renderWorkflow(cfg, true); err == nil {
		opts.WorkflowYAML = text
	}

	var (
		lister diagnostic.AgentLister
		caller core.Caller
	)

	if cfg.Project.Endpoint != "" {
		client, err := newFoundryClient(cfg, logger)
		if err != nil {
			return err
		}

		lister, caller = client, foundry.NewAgentCaller(client)
	}

	report := diagnostic.Run(ctx, opts, lister, caller)

	fmt.Fprint(cli.out(), report.Format())

	if !report.Healthy() {
		return errors.New("diagnostic found critical issues")
	}

	return nil
}
