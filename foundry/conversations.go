package foundry

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// Conversation is a server-side conversation handle.
type Conversation struct {
	ID string `json:"id"`
}

// CreateConversation opens a new, empty conversation.
func (c *Client) CreateConversation(ctx context.Context) (*Conversation, error) {
	var out Conversation
	if err := c.oai.Post(ctx, "conversations", map[string]any{}, &out); err != nil {
		return nil, wrapErr("create conversation", err)
	}

	if out.ID == "" {
		return nil, wrapErr("create conversation", errors.New("empty conversation id"))
	}

	return &out, nil
}

// agentReference is the request extension that routes a response to a
// hosted agent instead of a raw model.
type agentReference struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Respond sends input to the named agent within conversationID and returns
// the aggregated output text.
func (c *Client) Respond(ctx context.Context, agentName, conversationID, input string) (string, error) {
	params := responses.ResponseNewParams{
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(input)},
	}

	reqOpts := []option.RequestOption{
		option.WithJSONSet("agent", agentReference{Name: agentName, Type: "agent_reference"}),
	}
	if conversationID != "" {
		reqOpts = append(reqOpts, option.WithJSONSet("conversation", conversationID))
	}

	resp, err := c.oai.Responses.New(ctx, params, reqOpts...)
	if err != nil {
		return "", wrapErr("respond "+agentName, err)
	}

	return resp.OutputText(), nil
}
