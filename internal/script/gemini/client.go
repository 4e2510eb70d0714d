package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"contentflow/internal/script"
)

var _ script.Provider = (*Client)(nil)

// Client generates content through the Gemini API with a response
// schema, so the model is constrained to the expected JSON shape.
type Client struct {
	client *genai.Client
	model  string
}

var sceneSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scene_number":       {Type: genai.TypeInteger},
		"start_time_seconds": {Type: genai.TypeNumber},
		"end_time_seconds":   {Type: genai.TypeNumber},
		"visual_description": {Type: genai.TypeString, Description: "Image generation prompt for this scene"},
		"narration_text":     {Type: genai.TypeString, Description: "Verbatim excerpt of the script spoken during this scene"},
	},
	Required: []string{"scene_number", "start_time_seconds", "end_time_seconds", "visual_description", "narration_text"},
}

var contentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":            {Type: genai.TypeString},
		"script":           {Type: genai.TypeString, Description: "Full narration text"},
		"duration_seconds": {Type: genai.TypeNumber},
		"topic_keywords":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"scenes":           {Type: genai.TypeArray, Items: sceneSchema},
	},
	Required: []string{"title", "script", "scenes"},
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) GenerateContent(ctx context.Context, req script.Request) (*script.Content, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(script.BuildPrompt(req)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(script.SystemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    contentSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini: empty response")
	}

	return script.ParseContent(text)
}
