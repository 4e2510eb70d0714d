package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	defaultTimeout    = 120 * time.Second
	defaultModel      = "eleven_flash_v2_5"
	defaultStability  = 0.5
	defaultSimilarity = 0.5
)

var _ Synthesizer = (*ElevenLabsClient)(nil)

type elevenlabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenlabsVoiceSettings `json:"voice_settings"`
}

type elevenlabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenlabsErrorResponse struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// ElevenLabsClient synthesizes narration audio via the ElevenLabs API.
type ElevenLabsClient struct {
	apiKey     string
	httpClient *http.Client
	model      string
	stability  float64
	similarity float64
	baseURL    string
}

// ElevenLabsOptions configures the client; zero values fall back to
// sensible defaults.
type ElevenLabsOptions struct {
	Model      string
	Stability  float64
	Similarity float64
}

func NewElevenLabsClient(apiKey string, opts ElevenLabsOptions) *ElevenLabsClient {
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	stability := opts.Stability
	if stability == 0 {
		stability = defaultStability
	}
	similarity := opts.Similarity
	if similarity == 0 {
		similarity = defaultSimilarity
	}

	return &ElevenLabsClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		model:      model,
		stability:  stability,
		similarity: similarity,
		baseURL:    elevenLabsBaseURL,
	}
}

// Synthesize returns raw audio bytes for the given text and voice.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	reqBody := elevenlabsRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: elevenlabsVoiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarity,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

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
		var errResp elevenlabsErrorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Detail.Message != "" {
			return nil, fmt.Errorf("elevenlabs: %s", errResp.Detail.Message)
		}
		return nil, fmt.Errorf("elevenlabs: %s", resp.Status)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("elevenlabs: empty audio response")
	}

	return body, nil
}

// SetBaseURL overrides the API endpoint for testing.
func (c *ElevenLabsClient) SetBaseURL(url string) {
	c.baseURL = url
}
