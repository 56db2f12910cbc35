package util

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		text string
		data map[string]any
		want string
	}{
		{"no markers", "plain text", nil, "plain text"},
		{"variable", "Summarize: {{.Report}}", map[string]any{"Report": "<ok> & done"}, "Summarize: <ok> & done"},
		{"default", `{{default "none" .Missing}}`, map[string]any{}, "none"},
		{"upper", `{{upper .Name}}`, map[string]any{"Name": "agent-gpt"}, "AGENT-GPT"},
		{"join", `{{join ", " .Names}}`, map[string]any{"Names": []string{"a", "b"}}, "a, b"},
		{"indent", `{{indent 2 .Text}}`, map[string]any{"Text": "a\nb"}, "  a\n  b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderTemplate(tt.text, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)

	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
