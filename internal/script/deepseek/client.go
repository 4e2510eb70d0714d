package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"contentflow/internal/script"
)

const (
	defaultBaseURL = "https://api.deepseek.com/v1/chat/completions"
	defaultTimeout = 60 * time.Second
	roleSystem     = "system"
	roleUser       = "user"
)

var _ script.Provider = (*Client)(nil)

// Client generates content through the DeepSeek chat completion API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	model      string
	baseURL    string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type request struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type response struct {
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Message message `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		model:   model,
		baseURL: defaultBaseURL,
	}
}

func (c *Client) Name() string { return "deepseek" }

func (c *Client) GenerateContent(ctx context.Context, req script.Request) (*script.Content, error) {
	reqBody := request{
		Model: c.model,
		Messages: []message{
			{Role: roleSystem, Content: script.SystemPrompt},
			{Role: roleUser, Content: script.BuildPrompt(req)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.doRequest(ctx, data)
	if err != nil {
		return nil, err
	}

	content, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	return script.ParseContent(content)
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepseek: %s", string(body))
	}

	return body, nil
}

func (c *Client) parseResponse(data []byte) (string, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("deepseek: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("deepseek: no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// SetBaseURL overrides the API endpoint for testing.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}
