package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"contentflow/internal/media"
	"contentflow/pkg/httputil"
)

const (
	defaultBaseURL = "https://api.replicate.com/v1"
	defaultModel   = "black-forest-labs/flux-schnell"
	defaultTimeout = 120 * time.Second
)

var _ media.Provider = (*Client)(nil)

// Client generates base images through Replicate's synchronous
// prediction API (Prefer: wait blocks until the model finishes).
type Client struct {
	apiKey     string
	httpClient *httputil.RetryClient
	model      string
	baseURL    string
}

type predictionInput struct {
	Prompt        string `json:"prompt"`
	AspectRatio   string `json:"aspect_ratio,omitempty"`
	OutputQuality int    `json:"output_quality,omitempty"`
}

type predictionRequest struct {
	Input predictionInput `json:"input"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: httputil.NewRetryClient(&http.Client{Timeout: defaultTimeout}, httputil.DefaultRetryConfig()),
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

func (c *Client) Name() string { return "replicate" }

func (c *Client) GenerateImage(ctx context.Context, req media.Request) (string, error) {
	quality := 80
	if req.Quality == "high" {
		quality = 100
	}

	body, err := json.Marshal(predictionRequest{
		Input: predictionInput{
			Prompt:        req.Prompt,
			AspectRatio:   req.AspectRatio,
			OutputQuality: quality,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Prefer", "wait")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("replicate: %s: %s", resp.Status, string(respBody))
	}

	var prediction predictionResponse
	if err := json.Unmarshal(respBody, &prediction); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if prediction.Error != nil && *prediction.Error != "" {
		return "", fmt.Errorf("replicate: %s", *prediction.Error)
	}
	if prediction.Status != "succeeded" {
		return "", fmt.Errorf("replicate: prediction %s is %s", prediction.ID, prediction.Status)
	}

	return parseOutput(prediction.Output)
}

// parseOutput handles both output shapes the API uses: a single URL
// string or an array of URLs.
func parseOutput(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0], nil
	}

	return "", fmt.Errorf("replicate: no output url in prediction")
}

// SetBaseURL overrides the API endpoint for testing.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}
