package luma

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
	defaultBaseURL      = "https://api.lumalabs.ai/dream-machine/v1"
	defaultTimeout      = 60 * time.Second
	defaultPollInterval = 5 * time.Second
	defaultMaxWait      = 5 * time.Minute
)

var _ media.Enhancer = (*Client)(nil)

// Client adds parallax motion to a still image through the Luma Dream
// Machine API. Generation is asynchronous: the client submits the image
// as the first keyframe and polls until the video is ready.
type Client struct {
	apiKey       string
	httpClient   *httputil.RetryClient
	baseURL      string
	pollInterval time.Duration
	maxWait      time.Duration
}

type keyframe struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type generationRequest struct {
	Prompt      string              `json:"prompt"`
	AspectRatio string              `json:"aspect_ratio,omitempty"`
	Loop        bool                `json:"loop"`
	Keyframes   map[string]keyframe `json:"keyframes"`
}

type generationResponse struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	FailureReason string `json:"failure_reason"`
	Assets        struct {
		Video string `json:"video"`
	} `json:"assets"`
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:       apiKey,
		httpClient:   httputil.NewRetryClient(&http.Client{Timeout: defaultTimeout}, httputil.DefaultRetryConfig()),
		baseURL:      defaultBaseURL,
		pollInterval: defaultPollInterval,
		maxWait:      defaultMaxWait,
	}
}

func (c *Client) Name() string { return "luma" }

func (c *Client) AddMotion(ctx context.Context, imageURL string, req media.Request) (string, error) {
	body, err := json.Marshal(generationRequest{
		Prompt:      "subtle cinematic parallax motion, " + req.Prompt,
		AspectRatio: req.AspectRatio,
		Loop:        true,
		Keyframes: map[string]keyframe{
			"frame0": {Type: "image", URL: imageURL},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	gen, err := c.post(ctx, "/generations", body)
	if err != nil {
		return "", err
	}

	return c.waitForVideo(ctx, gen.ID)
}

func (c *Client) waitForVideo(ctx context.Context, id string) (string, error) {
	deadline := time.Now().Add(c.maxWait)

	for {
		gen, err := c.get(ctx, "/generations/"+id)
		if err != nil {
			return "", err
		}

		switch gen.State {
		case "completed":
			if gen.Assets.Video == "" {
				return "", fmt.Errorf("luma: generation %s completed without a video asset", id)
			}
			return gen.Assets.Video, nil
		case "failed":
			return "", fmt.Errorf("luma: generation %s failed: %s", id, gen.FailureReason)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("luma: generation %s still %s after %s", id, gen.State, c.maxWait)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*generationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (*generationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*generationResponse, error) {
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("luma: %s: %s", resp.Status, string(body))
	}

	var gen generationResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &gen, nil
}

// SetBaseURL overrides the API endpoint for testing.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetPolling overrides poll timing for testing.
func (c *Client) SetPolling(interval, maxWait time.Duration) {
	c.pollInterval = interval
	c.maxWait = maxWait
}
