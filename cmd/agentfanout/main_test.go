package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/fake"
	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentfanout/config"
)

const projectPath = "/api/projects/demo"

func TestMain(m *testing.M) {
	for _, key := range []string{
		config.EnvProjectEndpoint, config.EnvProjectAPIVersion,
		config.EnvModelDeployment, config.EnvAgentName,
	} {
		_ = os.Unsetenv(key)
	}

	os.Exit(m.Run())
}

// run parses args like main does and executes the selected command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	cli := CLI{stdout: &buf}

	parser, err := kong.New(&cli, kong.Name("agentfanout"), kong.Exit(func(code int) {
		t.Fatalf("unexpected exit with code %d", code)
	}))
	require.NoError(t, err)

	kctx, err := parser.Parse(append([]string{"--log-level", "error"}, args...))
	require.NoError(t, err)

	err = kctx.Run(&cli)

	return buf.String(), err
}

func useFakeCredential(t *testing.T) {
	t.Helper()

	orig := credentialFunc
	credentialFunc = func() (azcore.TokenCredential, error) { return &fake.TokenCredential{}, nil }

	t.Cleanup(func() { credentialFunc = orig })
}

func TestOrchestrateMockBackend(t *testing.T) {
	out, err := run(t, "orchestrate", "--backend", "mock", "--input", "Tell me a story")
	require.NoError(t, err)

	assert.Contains(t, out, "🚀 Starting multi-agent orchestration for: 'Tell me a story'")
	assert.Contains(t, out, "🤖 MULTI-AGENT STORYTELLING RESPONSES")
	assert.Contains(t, out, "AGENT-DEEPSEEK (DeepSeek-V3.2)")
	assert.Contains(t, out, "Mock response from agent-mistral to: Tell me a story")
	assert.Contains(t, out, "📊 Coordination Results: 3/3 agents responded successfully")
	assert.NotContains(t, out, "Coordinator Summary")

	// Report order follows the configured targets.
	assert.Less(t, strings.Index(out, "AGENT-DEEPSEEK"), strings.Index(out, "AGENT-GPT"))
	assert.Less(t, strings.Index(out, "AGENT-GPT"), strings.Index(out, "AGENT-MISTRAL"))
}

func TestOrchestrateSequentialAndSummary(t *testing.T) {
	out, err := run(t, "orchestrate", "--backend", "mock", "--sequential", "--summarize", "--input", "hi")
	require.NoError(t, err)

	assert.Contains(t, out, "🎯 Coordinator Summary:")
	assert.Contains(t, out, "Mock response from agent-coordinator to: Summarize this multi-agent coordination result:")
	assert.Contains(t, out, "3/3 agents responded successfully")
}

func TestOrchestrateAllFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"deployment not found","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_BASE_URL", srv.URL+"/")
	t.Setenv("OPENAI_API_KEY", "test-key")

	out, err := run(t, "orchestrate", "--backend", "openai", "--input", "hi")
	require.ErrorIs(t, err, errAllFailed)

	assert.Contains(t, out, "Sorry, agent-gpt is currently unavailable.")
	assert.Contains(t, out, "📊 Coordination Results: 0/3 agents responded successfully")
}

func TestOrchestrateWritesMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentfanout.prom")

	_, err := run(t, "orchestrate", "--backend", "mock", "--metrics-file", path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(raw)
	assert.Contains(t, text, `agentfanout_calls_total{status="success",target="agent-gpt"} 1`)
	assert.Contains(t, text, `agentfanout_orchestrations_total{strategy="concurrent"} 1`)
	assert.Contains(t, text, "agentfanout_last_run_successes 3")
}

func TestOrchestrateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentfanout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
targets:
  - name: agent-one
    model: m1
  - name: agent-two
    model: m2
orchestration:
  backend: mock
  input: configured input
`), 0o600))

	out, err := run(t, "--config", path, "orchestrate")
	require.NoError(t, err)

	assert.Contains(t, out, "Mock response from agent-one to: configured input")
	assert.Contains(t, out, "2/2 agents responded successfully")
}

func TestOrchestrateBackendErrors(t *testing.T) {
	_, err := run(t, "orchestrate", "--backend", "nope")
	require.ErrorIs(t, err, config.ErrUnknownBackend)

	_, err = run(t, "orchestrate", "--backend", "foundry")
	require.ErrorIs(t, err, config.ErrMissingEndpoint)
}

func TestWorkflowRender(t *testing.T) {
	out, err := run(t, "workflow", "render")
	require.NoError(t, err)

	assert.Contains(t, out, "kind: InvokeAzureAgent")
	assert.Contains(t, out, "name: agent-deepseek")
	assert.Contains(t, out, "name: agent-coordinator")

	out, err = run(t, "workflow", "render", "--no-coordinator")
	require.NoError(t, err)
	assert.NotContains(t, out, "agent-coordinator")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "agentfanout version "))
}

// fakeProject serves the agent endpoints used by the agent commands.
type fakeProject struct {
	mu      sync.Mutex
	created []string
}

func (fp *fakeProject) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, projectPath)

	switch {
	case r.Method == http.MethodGet && path == "/agents":
		_, _ = w.Write([]byte(`{"data":[
			{"id":"a1","name":"agent-gpt","versions":{"latest":{"version":"3","definition":{"kind":"prompt","model":"gpt-5.2"}}}},
			{"id":"a2","name":"multi-agent-storytelling-workflow","versions":{"latest":{"version":"1","definition":{"kind":"workflow"}}}}
		],"has_more":false}`))
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/agents/") && strings.HasSuffix(path, "/versions"):
		name := strings.TrimSuffix(strings.TrimPrefix(path, "/agents/"), "/versions")

		fp.mu.Lock()
		fp.created = append(fp.created, name)
		fp.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]string{"id": name + ":1", "name": name, "version": "1"})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"not found"}}`))
	}
}

func TestAgentList(t *testing.T) {
	useFakeCredential(t)

	srv := httptest.NewServer(&fakeProject{})
	defer srv.Close()

	t.Setenv(config.EnvProjectEndpoint, srv.URL+projectPath)

	out, err := run(t, "agent", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Found 2 agents:")
	assert.Contains(t, out, "agent-gpt (version 3, prompt, model gpt-5.2)")
	assert.Contains(t, out, "multi-agent-storytelling-workflow (version 1, workflow)")
}

func TestAgentCreate(t *testing.T) {
	useFakeCredential(t)

	fp := &fakeProject{}
	srv := httptest.NewServer(fp)
	defer srv.Close()

	t.Setenv(config.EnvProjectEndpoint, srv.URL+projectPath)
	t.Setenv(config.EnvAgentName, "agent-helper")
	t.Setenv(config.EnvModelDeployment, "gpt-4o")

	out, err := run(t, "agent", "create")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"agent-deepseek", "agent-gpt", "agent-mistral", "agent-coordinator", "agent-helper",
	}, fp.created)
	assert.Contains(t, out, "Agent created (id: agent-helper:1, name: agent-helper, version: 1)")
}

func TestWorkflowCreateRequiresDeployedAgents(t *testing.T) {
	useFakeCredential(t)

	fp := &fakeProject{}
	srv := httptest.NewServer(fp)
	defer srv.Close()

	t.Setenv(config.EnvProjectEndpoint, srv.URL+projectPath)

	_, err := run(t, "workflow", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent-deepseek")
	assert.Empty(t, fp.created)
}

func TestMergeKeepsFlags(t *testing.T) {
	c := &OrchestrateCmd{Backend: "mock", Retries: 2}
	c.merge(config.Orchestration{Backend: "foundry", Input: "from config", Retries: 5, MaxConcurrency: 4, Summarize: true})

	assert.Equal(t, "mock", c.Backend)
	assert.Equal(t, "from config", c.Input)
	assert.Equal(t, 2, c.Retries)
	assert.Equal(t, 4, c.MaxConcurrency)
	assert.True(t, c.Summarize)
}
