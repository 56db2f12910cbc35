package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentfanout/core"
)

// Action kinds emitted by Build.
const (
	KindWorkflow            = "workflow"
	KindOnConversationStart = "OnConversationStart"
	KindSetVariable         = "SetVariable"
	KindCreateConversation  = "CreateConversation"
	KindInvokeAzureAgent    = "InvokeAzureAgent"
	KindSendActivity        = "SendActivity"
	KindEndConversation     = "EndConversation"
)

const userPromptVar = "Local.UserPrompt"

var (
	// ErrNoTargets is returned by Build when no targets are given.
	ErrNoTargets = errors.New("workflow: at least one target is required")
	// ErrVariableCollision is returned when two agent names map to the same variable.
	ErrVariableCollision = errors.New("workflow: agent names map to the same variable")
)

// Workflow is a workflow agent document.
type Workflow struct {
	Kind    string  `yaml:"kind"`
	Trigger Trigger `yaml:"trigger"`
}

// Trigger starts the workflow.
type Trigger struct {
	Kind    string   `yaml:"kind"`
	ID      string   `yaml:"id"`
	Actions []Action `yaml:"actions"`
}

// Action is one workflow step. Only the fields relevant to Kind are set.
type Action struct {
	Kind           string    `yaml:"kind"`
	ID             string    `yaml:"id"`
	Description    string    `yaml:"description,omitempty"`
	Variable       string    `yaml:"variable,omitempty"`
	Value          string    `yaml:"value,omitempty"`
	ConversationID string    `yaml:"conversationId,omitempty"`
	Agent          *AgentRef `yaml:"agent,omitempty"`
	Input          *Messages `yaml:"input,omitempty"`
	Output         *Messages `yaml:"output,omitempty"`
	Activity       string    `yaml:"activity,omitempty"`
}

// AgentRef names the hosted agent an InvokeAzureAgent step calls.
type AgentRef struct {
	Name string `yaml:"name"`
}

// Messages binds the messages of an agent invocation to an expression or variable.
type Messages struct {
	Messages string `yaml:"messages"`
}

// Options tune Build.
type Options struct {
	// Name becomes the trigger id (dashes are replaced by underscores).
	Name string
	// Coordinator, when set, evaluates all answers in a final agent step.
	Coordinator *core.Target
	// EvaluationPrompt opens the coordinator input.
	EvaluationPrompt string
	// ResultTitle opens the final activity text.
	ResultTitle string
}

// Build creates a workflow that sends the user's message to every target in
// its own conversation and reports all answers in declaration order.
func Build(targets []core.Target, optFns ...func(o *Options)) (*Workflow, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	opts := Options{
		Name:             "multi-agent-storytelling-workflow",
		EvaluationPrompt: "Evaluate these stories and select the best one:",
		ResultTitle:      "🎯 **MULTI-AGENT STORYTELLING RESULTS**",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	all := targets
	if opts.Coordinator != nil {
		all = append(append([]core.Target{}, targets...), *opts.Coordinator)
	}

	seen := map[string]string{}
	for _, t := range all {
		v := VariableName(t.Name)
		if prev, ok := seen[v]; ok {
			return nil, fmt.Errorf("%w: %q and %q", ErrVariableCollision, prev, t.Name)
		}

		seen[v] = t.Name
	}

	actions := []Action{{
		Kind:     KindSetVariable,
		ID:       "set_user_prompt",
		Variable: userPromptVar,
		Value:    "=UserMessage(System.LastMessageText)",
	}}

	for _, t := range all {
		actions = append(actions, Action{
			Kind:           KindCreateConversation,
			ID:             "create_" + identifier(t.Name) + "_conversation",
			ConversationID: conversationVar(t.Name),
		})
	}

	for _, t := range targets {
		actions = append(actions, Action{
			Kind:           KindInvokeAzureAgent,
			ID:             identifier(t.Name),
			Description:    describe(t),
			ConversationID: "=" + conversationVar(t.Name),
			Agent:          &AgentRef{Name: t.Name},
			Input:          &Messages{Messages: "=" + userPromptVar},
			Output:         &Messages{Messages: outputVar(t.Name)},
		})
	}

	summary := []string{quote(opts.ResultTitle + "\n\n")}
	for _, t := range targets {
		summary = append(summary, quote("🤖 **"+t.String()+":** "), lastText(outputVar(t.Name)), quote("\n\n"))
	}

	if c := opts.Coordinator; c != nil {
		input := []string{quote(opts.EvaluationPrompt + "\n\n")}
		for _, t := range targets {
			input = append(input, quote("**"+t.String()+":**\n"), lastText(outputVar(t.Name)), quote("\n\n"))
		}

		input = append(input, quote("Provide your analysis and selection."))

		actions = append(actions, Action{
			Kind:           KindInvokeAzureAgent,
			ID:             identifier(c.Name),
			Description:    "Coordinator evaluates all answers",
			ConversationID: "=" + conversationVar(c.Name),
			Agent:          &AgentRef{Name: c.Name},
			Input:          &Messages{Messages: concat(input)},
			Output:         &Messages{Messages: "Local.FinalEvaluation"},
		})

		summary = append(summary, quote("🏆 **Coordinator Evaluation:**\n"), lastText("Local.FinalEvaluation"))
	}

	actions = append(actions,
		Action{Kind: KindSendActivity, ID: "send_final_results", Activity: concat(summary)},
		Action{Kind: KindEndConversation, ID: "end_workflow"},
	)

	return &Workflow{
		Kind: KindWorkflow,
		Trigger: Trigger{
			Kind:    KindOnConversationStart,
			ID:      identifier(opts.Name),
			Actions: actions,
		},
	}, nil
}

// YAML renders the workflow document.
func (w *Workflow) YAML() (string, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(w); err != nil {
		return "", fmt.Errorf("workflow: encode: %w", err)
	}

	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("workflow: encode: %w", err)
	}

	return buf.String(), nil
}

// Agents returns the names of the agents invoked by the workflow in order.
func (w *Workflow) Agents() []string {
	var names []string

	for _, a := range w.Trigger.Actions {
		if a.Kind == KindInvokeAzureAgent && a.Agent != nil {
			names = append(names, a.Agent.Name)
		}
	}

	return names
}

// Parse decodes a workflow document produced by Build.
func Parse(text string) (*Workflow, error) {
	var w Workflow
	if err := yaml.Unmarshal([]byte(text), &w); err != nil {
		return nil, fmt.Errorf("workflow: decode: %w", err)
	}

	return &w, nil
}

// VariableName derives a workflow variable identifier from an agent name,
// e.g. "agent-deepseek" becomes "AgentDeepseek".
func VariableName(name string) string {
	var b strings.Builder

	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}

	return b.String()
}

func identifier(name string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return '_'
	}, name))
}

func conversationVar(name string) string { return "Local." + VariableName(name) + "ConversationId" }

func outputVar(name string) string { return "Local." + VariableName(name) + "Story" }

func lastText(variable string) string { return "Last(" + variable + ").Text" }

func describe(t core.Target) string {
	if t.Model == "" {
		return "Invoke " + t.Name
	}

	return "Invoke " + t.Name + " (" + t.Model + ")"
}

// quote renders a string literal of the workflow expression language. Line
// breaks are written as \n escapes and single quotes are doubled.
func quote(s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	s = strings.ReplaceAll(s, "\n", `\n`)

	return "'" + s + "'"
}

func concat(parts []string) string {
	return "=Concat(" + strings.Join(parts, ", ") + ")"
}
