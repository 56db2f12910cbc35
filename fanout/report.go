package fanout

import (
	"strings"

	"github.com/hupe1980/agentfanout/core"
)

// DefaultTitle is the heading printed by FormatReport.
const DefaultTitle = "🤖 MULTI-AGENT STORYTELLING RESPONSES"

const (
	outerRuleWidth = 80
	innerRuleWidth = 60
)

// Formatter renders a ReportSet as human-readable text.
type Formatter struct {
	// Title replaces DefaultTitle when non-empty.
	Title string
}

// FormatReport renders report with the default title.
func FormatReport(report core.ReportSet) string {
	return Formatter{}.Format(report)
}

// Format renders report. Equal reports always render to identical text.
func (f Formatter) Format(report core.ReportSet) string {
	title := f.Title
	if title == "" {
		title = DefaultTitle
	}

	outer := strings.Repeat("=", outerRuleWidth)
	inner := strings.Repeat("-", innerRuleWidth)

	var b strings.Builder

	b.WriteString("\n" + outer + "\n")
	b.WriteString(title + "\n")
	b.WriteString(outer + "\n\n")

	for _, r := range report {
		marker := "❌"
		if r.IsSuccess() {
			marker = "✅"
		}

		b.WriteString(marker + " " + strings.ToUpper(r.TargetName) + " (" + r.Model + ")\n")
		b.WriteString(inner + "\n")
		b.WriteString(r.ResponseText + "\n\n")
	}

	b.WriteString(outer + "\n")

	return b.String()
}
