package workflow

import (
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// ReferencedAgents lists every agent name an arbitrary workflow document
// invokes, in order of first appearance. Both the nested form
// ("agent: {name: x}") and the flat form ("agent_name: x") are recognized,
// at any nesting depth.
func ReferencedAgents(text string) ([]string, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("workflow: decode: %w", err)
	}

	seen := map[string]bool{}

	var names []string

	var walk func(v any)
	walk = func(v any) {
		switch node := v.(type) {
		case map[string]any:
			if node["kind"] == KindInvokeAzureAgent {
				if name := agentName(node); name != "" && !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}

			for _, key := range slices.Sorted(maps.Keys(node)) {
				walk(node[key])
			}
		case []any:
			for _, child := range node {
				walk(child)
			}
		}
	}

	walk(doc)

	return names, nil
}

func agentName(action map[string]any) string {
	if agent, ok := action["agent"].(map[string]any); ok {
		if name, ok := agent["name"].(string); ok {
			return name
		}
	}

	if name, ok := action["agent_name"].(string); ok {
		return name
	}

	return ""
}
