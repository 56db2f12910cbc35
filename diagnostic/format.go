package diagnostic

import (
	"fmt"
	"strings"
)

var statusIcon = map[Status]string{
	StatusPass: "✅",
	StatusWarn: "⚠️",
	StatusFail: "❌",
	StatusSkip: "⏭️",
}

// Format renders the report with a summary and recommendations. Equal
// reports render to identical text.
func (r *Report) Format() string {
	var b strings.Builder

	rule := strings.Repeat("=", 60)

	b.WriteString("🔍 Foundry Diagnostic\n" + rule + "\n")

	for i, c := range r.Checks {
		fmt.Fprintf(&b, "\n%d. %s\n%s\n", i+1, strings.ToUpper(c.Name), strings.Repeat("-", 30))
		fmt.Fprintf(&b, "%s %s\n", statusIcon[c.Status], c.Detail)

		for _, item := range c.Items {
			b.WriteString("   • " + item + "\n")
		}
	}

	b.WriteString("\n" + rule + "\n📋 SUMMARY & RECOMMENDATIONS\n" + rule + "\n")

	if r.Healthy() {
		b.WriteString("✅ No critical issues detected\n")
	}

	for _, rec := range r.Recommendations() {
		b.WriteString("• " + rec + "\n")
	}

	return b.String()
}

// Recommendations derives follow-up actions from the failed checks.
func (r *Report) Recommendations() []string {
	var recs []string

	if c, ok := r.Check(CheckEnvironment); ok && c.Status == StatusFail {
		recs = append(recs, "Set PROJECT_ENDPOINT in the environment or in a .env file")
	}

	if c, ok := r.Check(CheckAgents); ok && c.Status == StatusFail {
		recs = append(recs, "Verify Azure credentials and permissions, then run: agentfanout agent create")
	}

	if len(r.Missing) > 0 {
		recs = append(recs, "Create the missing agents with: agentfanout agent create")
	}

	if len(r.Mismatched) > 0 {
		recs = append(recs, "Recreate the workflow so it references deployed agents: agentfanout workflow create")
	}

	if c, ok := r.Check(CheckConnectivity); ok && c.Status == StatusFail {
		recs = append(recs, "Check model deployments and quota limits for the failing agents")
	}

	if c, ok := r.Check(CheckModels); ok && c.Status == StatusWarn {
		recs = append(recs, "Verify all model deployments exist in the Foundry portal")
	}

	return recs
}
