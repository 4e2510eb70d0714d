package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// SceneClip is one ordered entry of the compositing timeline.
type SceneClip struct {
	ImageURL      string  `json:"imageUrl"`
	StartTime     float64 `json:"startTime"`
	EndTime       float64 `json:"endTime"`
	Duration      float64 `json:"duration"`
	SceneNumber   int     `json:"sceneNumber"`
	NarrationText string  `json:"narrationText"`
}

// RenderConfig controls how the compositing service renders the video.
type RenderConfig struct {
	ParallaxSpeed      float64 `json:"parallaxSpeed"`
	TransitionDuration float64 `json:"transitionDuration"`
	EnableAudioSync    bool    `json:"enableAudioSync"`
	TotalDuration      float64 `json:"totalDuration"`
	FrameRate          int     `json:"frameRate"`
	MusicTrack         string  `json:"musicTrack,omitempty"`
	MusicVolume        float64 `json:"musicVolume,omitempty"`
}

// Request is everything the compositing service needs for one render.
type Request struct {
	Title  string
	Audio  []byte
	Scenes []SceneClip
	Config RenderConfig
}

// Renderer is implemented by the compositing client; workers depend on
// this interface so tests can substitute a fake.
type Renderer interface {
	Compose(ctx context.Context, req Request) ([]byte, error)
}

var _ Renderer = (*Client)(nil)

// Client talks to the external video compositing service. The render
// call is synchronous and can take minutes for longer items.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// Compose uploads the narration audio, the ordered scene timeline and
// the render config, and returns the rendered video bytes.
func (c *Client) Compose(ctx context.Context, req Request) ([]byte, error) {
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("compose: no audio")
	}
	if len(req.Scenes) == 0 {
		return nil, fmt.Errorf("compose: no scenes")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	audioPart, err := writer.CreateFormFile("audio", "narration.mp3")
	if err != nil {
		return nil, fmt.Errorf("create audio part: %w", err)
	}
	if _, err := audioPart.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("write audio: %w", err)
	}

	if err := writeJSONField(writer, "scenes", req.Scenes); err != nil {
		return nil, err
	}
	if err := writeJSONField(writer, "config", req.Config); err != nil {
		return nil, err
	}
	if err := writer.WriteField("title", req.Title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/compose", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("composer: %s: %s", resp.Status, string(respBody))
	}

	if len(respBody) == 0 {
		return nil, fmt.Errorf("composer: empty video response")
	}

	return respBody, nil
}

func writeJSONField(writer *multipart.Writer, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	part, err := writer.CreateFormField(name)
	if err != nil {
		return fmt.Errorf("create %s part: %w", name, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// SetHTTPClient overrides the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
