package together

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
	defaultBaseURL = "https://api.together.xyz/v1"
	defaultModel   = "black-forest-labs/FLUX.1-schnell"
	defaultTimeout = 120 * time.Second
)

var _ media.Provider = (*Client)(nil)

// Client generates base images through the Together AI image API. It
// sits behind replicate in the fallback order.
type Client struct {
	apiKey     string
	httpClient *httputil.RetryClient
	model      string
	baseURL    string
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
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

func (c *Client) Name() string { return "together" }

func (c *Client) GenerateImage(ctx context.Context, req media.Request) (string, error) {
	width, height := dimensions(req.AspectRatio, req.Quality)

	body, err := json.Marshal(imageRequest{
		Model:          c.model,
		Prompt:         req.Prompt,
		Width:          width,
		Height:         height,
		Steps:          4,
		N:              1,
		ResponseFormat: "url",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("together: %s: %s", resp.Status, string(respBody))
	}

	var result imageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("together: %s", result.Error.Message)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("together: no image url in response")
	}

	return result.Data[0].URL, nil
}

// dimensions maps an aspect ratio and quality tier onto the model's
// pixel grid. Vertical 9:16 is the pipeline default.
func dimensions(aspectRatio, quality string) (int, int) {
	switch aspectRatio {
	case "16:9":
		if quality == "high" {
			return 1344, 768
		}
		return 1024, 576
	case "1:1":
		return 1024, 1024
	default: // 9:16
		if quality == "high" {
			return 768, 1344
		}
		return 576, 1024
	}
}

// SetBaseURL overrides the API endpoint for testing.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}
