package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentfanout/core"
)

// Environment variables that override file values.
const (
	EnvProjectEndpoint   = "PROJECT_ENDPOINT"
	EnvProjectAPIVersion = "PROJECT_API_VERSION"
	EnvModelDeployment   = "MODEL_DEPLOYMENT_NAME"
	EnvAgentName         = "AGENT_NAME"
)

// Backends accepted by Validate.
const (
	BackendFoundry   = "foundry"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendMock      = "mock"
)

const (
	storytellerInstructions = "You are a storytelling agent. You craft engaging one-line stories based on user prompts and context."
	coordinatorInstructions = "You are a coordinator agent that orchestrates storytelling from multiple AI agents. " +
		"You present their responses in a clear, side-by-side format for comparison."
	assistantInstructions = "You are a helpful assistant that answers general questions"
)

var (
	// ErrNoTargets is returned when the configuration names no targets.
	ErrNoTargets = errors.New("config: at least one target is required")
	// ErrDuplicateTarget is returned when two targets share a name.
	ErrDuplicateTarget = errors.New("config: duplicate target name")
	// ErrMissingEndpoint is returned when the foundry backend has no endpoint.
	ErrMissingEndpoint = errors.New("config: project endpoint is required (set " + EnvProjectEndpoint + ")")
	// ErrUnknownBackend is returned for an unsupported backend name.
	ErrUnknownBackend = errors.New("config: unknown backend")
)

// Config is the complete runtime configuration.
type Config struct {
	Project       Project       `yaml:"project"`
	Targets       []core.Target `yaml:"targets"`
	Coordinator   *core.Target  `yaml:"coordinator,omitempty"`
	Workflow      Workflow      `yaml:"workflow"`
	Orchestration Orchestration `yaml:"orchestration"`
	Logging       Logging       `yaml:"logging"`
}

// Project describes the hosted project.
type Project struct {
	Endpoint   string `yaml:"endpoint"`
	APIVersion string `yaml:"api_version"`
	// ModelDeployment and AgentName describe a single general purpose agent
	// that "agent create" provisions in addition to the targets.
	ModelDeployment string `yaml:"model_deployment"`
	AgentName       string `yaml:"agent_name"`
}

// Workflow configures the workflow agent.
type Workflow struct {
	Name string `yaml:"name"`
}

// Orchestration tunes the fan-out.
type Orchestration struct {
	Backend        string        `yaml:"backend"`
	Input          string        `yaml:"input"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	Retries        int           `yaml:"retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	RateLimit      float64       `yaml:"rate_limit"`
	Summarize      bool          `yaml:"summarize"`
}

// Logging configures the logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Project: Project{APIVersion: "2025-11-15-preview"},
		Targets: []core.Target{
			{Name: "agent-deepseek", Model: "DeepSeek-V3.2", Instructions: storytellerInstructions},
			{Name: "agent-gpt", Model: "gpt-5.2", Instructions: storytellerInstructions},
			{Name: "agent-mistral", Model: "Mistral-Large-3", Instructions: storytellerInstructions},
		},
		Coordinator: &core.Target{Name: "agent-coordinator", Model: "gpt-5.2", Instructions: coordinatorInstructions},
		Workflow:    Workflow{Name: "multi-agent-storytelling-workflow"},
		Orchestration: Orchestration{
			Backend:    BackendFoundry,
			Input:      "Tell me a story about a robot who dreams of becoming a chef",
			RetryDelay: 500 * time.Millisecond,
		},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}

		if err := yaml.Unmarshal([]byte(expandEnvVars(string(raw))), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvProjectEndpoint); v != "" {
		c.Project.Endpoint = v
	}

	if v := os.Getenv(EnvProjectAPIVersion); v != "" {
		c.Project.APIVersion = v
	}

	if v := os.Getenv(EnvModelDeployment); v != "" {
		c.Project.ModelDeployment = v
	}

	if v := os.Getenv(EnvAgentName); v != "" {
		c.Project.AgentName = v
	}
}

// Validate checks the configuration for the given backend.
func (c *Config) Validate(backend string) error {
	if len(c.Targets) == 0 {
		return ErrNoTargets
	}

	seen := map[string]bool{}

	for i, t := range c.Targets {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("config: target %d has no name", i)
		}

		if seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateTarget, name)
		}

		seen[name] = true
	}

	if c.Coordinator != nil && seen[c.Coordinator.Name] {
		return fmt.Errorf("%w: coordinator %s is also a target", ErrDuplicateTarget, c.Coordinator.Name)
	}

	switch backend {
	case BackendFoundry:
		if c.Project.Endpoint == "" {
			return ErrMissingEndpoint
		}
	case BackendOpenAI, BackendAnthropic, BackendMock:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	return nil
}

// ExtraAgent returns the general purpose agent described by the project
// settings, if both its name and model deployment are set.
func (c *Config) ExtraAgent() (core.Target, bool) {
	if c.Project.AgentName == "" || c.Project.ModelDeployment == "" {
		return core.Target{}, false
	}

	return core.Target{
		Name:         c.Project.AgentName,
		Model:        c.Project.ModelDeployment,
		Instructions: assistantInstructions,
	}, true
}
