package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentfanout/core"
)

var storytellers = []core.Target{
	{Name: "agent-deepseek", Model: "DeepSeek-V3.2"},
	{Name: "agent-gpt", Model: "gpt-5.2"},
	{Name: "agent-mistral", Model: "Mistral-Large-3"},
}

func TestVariableName(t *testing.T) {
	tests := map[string]string{
		"agent-deepseek":     "AgentDeepseek",
		"agent_GPT":          "AgentGpt",
		"story teller 2":     "StoryTeller2",
		"agent-coordinator":  "AgentCoordinator",
		"multi--dash__names": "MultiDashNames",
	}

	for in, want := range tests {
		assert.Equal(t, want, VariableName(in), in)
	}
}

func TestBuild_NoTargets(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestBuild_VariableCollision(t *testing.T) {
	_, err := Build([]core.Target{{Name: "agent-a"}, {Name: "agent_a"}})
	assert.ErrorIs(t, err, ErrVariableCollision)
}

func TestBuild_WithoutCoordinator(t *testing.T) {
	w, err := Build(storytellers)
	require.NoError(t, err)

	assert.Equal(t, KindWorkflow, w.Kind)
	assert.Equal(t, KindOnConversationStart, w.Trigger.Kind)
	assert.Equal(t, "multi_agent_storytelling_workflow", w.Trigger.ID)
	assert.Equal(t, []string{"agent-deepseek", "agent-gpt", "agent-mistral"}, w.Agents())

	actions := w.Trigger.Actions
	assert.Equal(t, KindSetVariable, actions[0].Kind)
	assert.Equal(t, KindEndConversation, actions[len(actions)-1].Kind)

	send := actions[len(actions)-2]
	assert.Equal(t, KindSendActivity, send.Kind)
	assert.Contains(t, send.Activity, "Last(Local.AgentGptStory).Text")
	assert.NotContains(t, send.Activity, "FinalEvaluation")
}

func TestBuild_WithCoordinator(t *testing.T) {
	coord := core.Target{Name: "agent-coordinator", Model: "gpt-5.2"}

	w, err := Build(storytellers, func(o *Options) { o.Coordinator = &coord })
	require.NoError(t, err)

	assert.Equal(t, []string{"agent-deepseek", "agent-gpt", "agent-mistral", "agent-coordinator"}, w.Agents())

	var created []string

	for _, a := range w.Trigger.Actions {
		if a.Kind == KindCreateConversation {
			created = append(created, a.ConversationID)
		}
	}

	assert.Equal(t, []string{
		"Local.AgentDeepseekConversationId",
		"Local.AgentGptConversationId",
		"Local.AgentMistralConversationId",
		"Local.AgentCoordinatorConversationId",
	}, created)

	var eval Action

	for _, a := range w.Trigger.Actions {
		if a.Agent != nil && a.Agent.Name == "agent-coordinator" {
			eval = a
		}
	}

	require.NotNil(t, eval.Input)
	assert.True(t, strings.HasPrefix(eval.Input.Messages, "=Concat('Evaluate these stories"))
	assert.Equal(t, "Local.FinalEvaluation", eval.Output.Messages)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'it''s\ndone'`, quote("it's\ndone"))
}

func TestYAML_RoundTrip(t *testing.T) {
	coord := core.Target{Name: "agent-coordinator", Model: "gpt-5.2"}

	w, err := Build(storytellers, func(o *Options) {
		o.Coordinator = &coord
		o.Name = "my-flow"
	})
	require.NoError(t, err)

	text, err := w.YAML()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "kind: workflow\n"))
	assert.Contains(t, text, "kind: InvokeAzureAgent")
	assert.Contains(t, text, "conversationId:")

	parsed, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, w, parsed)

	refs, err := ReferencedAgents(text)
	require.NoError(t, err)
	assert.Equal(t, w.Agents(), refs)
}

func TestReferencedAgents_FlatForm(t *testing.T) {
	text := `
trigger:
  kind: OnConversationStart
  actions:
    - kind: InvokeAzureAgent
      id: call_deepseek
      agent_name: "agent-deepseek"
    - kind: InvokeAzureAgent
      id: call_gpt
      agent_name: "DeepSeekAgent"
    - kind: InvokeAzureAgent
      id: again
      agent_name: "agent-deepseek"
    - kind: SendActivity
      id: send
      activity: "=Concat('x')"
`

	refs, err := ReferencedAgents(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"agent-deepseek", "DeepSeekAgent"}, refs)
}

func TestReferencedAgents_InvalidYAML(t *testing.T) {
	_, err := ReferencedAgents("kind: [unterminated")
	assert.Error(t, err)
}
