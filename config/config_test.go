package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentfanout/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"agent-deepseek", "agent-gpt", "agent-mistral"}, core.TargetNames(cfg.Targets))
	assert.Equal(t, "Mistral-Large-3", cfg.Targets[2].Model)
	require.NotNil(t, cfg.Coordinator)
	assert.Equal(t, "agent-coordinator", cfg.Coordinator.Name)
	assert.Equal(t, "multi-agent-storytelling-workflow", cfg.Workflow.Name)
	assert.Equal(t, "Tell me a story about a robot who dreams of becoming a chef", cfg.Orchestration.Input)
	assert.Equal(t, BackendFoundry, cfg.Orchestration.Backend)
}

func TestLoad_FileWithEnvExpansion(t *testing.T) {
	t.Setenv("FANOUT_TEST_ENDPOINT", "https://example.test/api/projects/p")
	t.Setenv(EnvProjectEndpoint, "")

	path := writeFile(t, "fanout.yaml", `
project:
  endpoint: ${FANOUT_TEST_ENDPOINT}
targets:
  - name: a
    model: ${FANOUT_TEST_MODEL:-m1}
  - name: b
    model: m2
coordinator: null
orchestration:
  max_concurrency: 2
  retries: 1
  retry_delay: 250ms
  input: "cost is $5"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/api/projects/p", cfg.Project.Endpoint)
	assert.Equal(t, []core.Target{{Name: "a", Model: "m1"}, {Name: "b", Model: "m2"}}, cfg.Targets)
	assert.Nil(t, cfg.Coordinator)
	assert.Equal(t, 2, cfg.Orchestration.MaxConcurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Orchestration.RetryDelay)
	assert.Equal(t, "cost is $5", cfg.Orchestration.Input)
	assert.Equal(t, "multi-agent-storytelling-workflow", cfg.Workflow.Name, "unset sections keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvProjectEndpoint, "https://env.test/api/projects/p")
	t.Setenv(EnvProjectAPIVersion, "2026-01-01")
	t.Setenv(EnvModelDeployment, "gpt-4o")
	t.Setenv(EnvAgentName, "helper")

	path := writeFile(t, "fanout.yaml", "project:\n  endpoint: https://file.test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.test/api/projects/p", cfg.Project.Endpoint)
	assert.Equal(t, "2026-01-01", cfg.Project.APIVersion)

	extra, ok := cfg.ExtraAgent()
	require.True(t, ok)
	assert.Equal(t, "helper", extra.Name)
	assert.Equal(t, "gpt-4o", extra.Model)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "targets: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		backend string
		wantErr error
	}{
		{"ok mock", func(*Config) {}, BackendMock, nil},
		{"foundry without endpoint", func(*Config) {}, BackendFoundry, ErrMissingEndpoint},
		{"foundry with endpoint", func(c *Config) { c.Project.Endpoint = "https://x" }, BackendFoundry, nil},
		{"no targets", func(c *Config) { c.Targets = nil }, BackendMock, ErrNoTargets},
		{"duplicate", func(c *Config) { c.Targets = append(c.Targets, c.Targets[0]) }, BackendMock, ErrDuplicateTarget},
		{"coordinator is target", func(c *Config) { c.Coordinator = &c.Targets[0] }, BackendMock, ErrDuplicateTarget},
		{"unknown backend", func(*Config) {}, "carrier-pigeon", ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvProjectEndpoint, "")

			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate(tt.backend)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_EmptyName(t *testing.T) {
	cfg := Default()
	cfg.Targets[1].Name = " "

	assert.Error(t, cfg.Validate(BackendMock))
}

func TestExtraAgent_Incomplete(t *testing.T) {
	cfg := Default()
	cfg.Project.AgentName = "helper"

	_, ok := cfg.ExtraAgent()
	assert.False(t, ok)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FANOUT_SET", "value")
	t.Setenv("FANOUT_EMPTY", "")

	tests := map[string]string{
		"plain":                      "plain",
		"${FANOUT_SET}":              "value",
		"${FANOUT_EMPTY:-fallback}":  "fallback",
		"${FANOUT_SET:-fallback}":    "value",
		"$FANOUT_SET stays":          "$FANOUT_SET stays",
		"pre-${FANOUT_UNSET_X}-post": "pre--post",
	}

	for in, want := range tests {
		assert.Equal(t, want, expandEnvVars(in), in)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("FANOUT_DOTENV_EXISTING", "kept")

	path := writeFile(t, ".env", "FANOUT_DOTENV_NEW=loaded\nFANOUT_DOTENV_EXISTING=overwritten\n")

	t.Cleanup(func() { _ = os.Unsetenv("FANOUT_DOTENV_NEW") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "loaded", os.Getenv("FANOUT_DOTENV_NEW"))
	assert.Equal(t, "kept", os.Getenv("FANOUT_DOTENV_EXISTING"))
}
