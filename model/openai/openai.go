// Package openai provides a model.Model backend that answers calls through the
// OpenAI Chat Completions API (streaming or non-streaming). The target's
// Instructions become the system message and its Model selects the
// deployment, falling back to the configured default.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentfanout/core"
	"github.com/hupe1980/agentfanout/model"
)

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	// Model is used when a target does not name one.
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// Stream requests a streaming completion and concatenates the deltas.
	Stream bool
}

// Model wraps the OpenAI Chat Completions API behind the model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client (configured
// from OPENAI_API_KEY / OPENAI_BASE_URL).
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Call implements core.Caller.
func (m *Model) Call(ctx context.Context, target core.Target, input string) (string, error) {
	params := m.buildParams(target, input)
	if m.opts.Stream {
		return m.callStreaming(ctx, params)
	}

	return m.callNonStreaming(ctx, params)
}

// buildParams assembles the OpenAI request parameters for one call.
func (m *Model) buildParams(target core.Target, input string) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if target.Instructions != "" {
		messages = append(messages, openai.SystemMessage(target.Instructions))
	}

	messages = append(messages, openai.UserMessage(input))

	modelName := target.Model
	if modelName == "" {
		modelName = m.opts.Model
	}

	return openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               modelName,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
}

func (m *Model) callStreaming(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var b strings.Builder

	for stream.Next() {
		for _, ch := range stream.Current().Choices {
			b.WriteString(ch.Delta.Content)
		}
	}

	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("openai streaming error: %w", err)
	}

	return b.String(), nil
}

func (m *Model) callNonStreaming(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: "openai",
	}
}
