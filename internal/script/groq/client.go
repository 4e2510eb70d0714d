package groq

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"

	"contentflow/internal/script"
)

var _ script.Provider = (*Client)(nil)

// Client generates content through the Groq chat completion API.
type Client struct {
	client *groq.Client
	model  groq.ChatModel
}

func NewClient(apiKey, model string) (*Client, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

func (c *Client) Name() string { return "groq" }

func (c *Client) GenerateContent(ctx context.Context, req script.Request) (*script.Content, error) {
	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: script.SystemPrompt},
			{Role: groq.RoleUser, Content: script.BuildPrompt(req)},
		},
		ResponseFormat: &groq.ChatResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("groq completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("groq: no response choices")
	}

	return script.ParseContent(resp.Choices[0].Message.Content)
}
