package core

import "strings"

// Target is an external identity to call once per orchestration run.
//
// Name is the unique identifier of the remote agent. Model is an advisory
// label carried into reports; it is never used for local decisions.
// Instructions are only consulted when an agent is provisioned or when a
// direct provider backend needs a system prompt.
type Target struct {
	Name         string `yaml:"name" json:"name"`
	Model        string `yaml:"model" json:"model"`
	Instructions string `yaml:"instructions,omitempty" json:"instructions,omitempty"`
}

// String returns "name (model)" or just the name when no model label is set.
func (t Target) String() string {
	if t.Model == "" {
		return t.Name
	}

	return t.Name + " (" + t.Model + ")"
}

// TargetNames returns the names of the given targets in declaration order.
func TargetNames(targets []Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}

	return names
}

// FindTarget looks up a target by name (case-insensitive).
func FindTarget(targets []Target, name string) (Target, bool) {
	for _, t := range targets {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}

	return Target{}, false
}
