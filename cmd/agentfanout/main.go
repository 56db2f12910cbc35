// Command agentfanout sends one prompt to several hosted agents and prints
// their answers side by side.
//
// Usage:
//
//	agentfanout orchestrate --input "Tell me a story about a lighthouse"
//	agentfanout orchestrate --backend mock --max-concurrency 2
//	agentfanout agent create
//	agentfanout workflow create --run "Tell me a story"
//	agentfanout diagnose --all
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/hupe1980/agentfanout/config"
	"github.com/hupe1980/agentfanout/logging"
)

// CLI defines the command-line interface.
type CLI struct {
	Version     VersionCmd     `cmd:"" help:"Show version information."`
	Orchestrate OrchestrateCmd `cmd:"" default:"withargs" help:"Send one input to every target and print the report."`
	Agent       AgentCmd       `cmd:"" help:"Manage hosted prompt agents."`
	Workflow    WorkflowCmd    `cmd:"" help:"Render or deploy the storytelling workflow agent."`
	Diagnose    DiagnoseCmd    `cmd:"" help:"Check the project for common setup problems."`

	Config    string   `short:"c" help:"Path to config file." type:"path"`
	EnvFile   []string `name:"env-file" help:"Additional .env files to load." type:"path"`
	LogLevel  string   `help:"Log level (debug, info, warn, error). Overrides the config file."`
	LogFormat string   `help:"Log format (text or json). Overrides the config file."`

	stdout io.Writer
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(cli *CLI) error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}

	fmt.Fprintf(cli.out(), "agentfanout version %s\n", version)

	return nil
}

func (cli *CLI) out() io.Writer {
	if cli.stdout == nil {
		return os.Stdout
	}

	return cli.stdout
}

// load reads the configuration and builds the logger from it and the
// global flags.
func (cli *CLI) load() (*config.Config, *logging.FanoutLogger, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, nil, err
	}

	levelName := cfg.Logging.Level
	if cli.LogLevel != "" {
		levelName = cli.LogLevel
	}

	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}

	format := cfg.Logging.Format
	if cli.LogFormat != "" {
		format = cli.LogFormat
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    format,
		Output:    os.Stderr,
		Component: "cli",
	})

	return cfg, logger, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentfanout"),
		kong.Description("agentfanout - multi-agent fan-out for hosted agent projects"),
		kong.UsageOnError(),
	)

	if err := config.LoadDotEnv(cli.EnvFile...); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load env files: %v\n", err)
		os.Exit(1)
	}

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
