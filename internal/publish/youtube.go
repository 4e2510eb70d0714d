package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	uploadURL  = "https://www.googleapis.com/upload/youtube/v3/videos"
	categoryID = "22"
)

var scopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
}

// UploadRequest describes one video to publish.
type UploadRequest struct {
	Media       io.Reader
	Filename    string
	Title       string
	Description string
	Tags        []string
	Privacy     string
}

// UploadResponse is the uploaded video's identity.
type UploadResponse struct {
	VideoID string
	URL     string
}

// Uploader publishes finished artifacts to a video platform.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error)
}

var _ Uploader = (*YouTubeClient)(nil)

// YouTubeClient uploads through the YouTube Data API. OAuth linking is
// handled outside the pipeline; the client consumes a pre-provisioned
// token file and persists refreshes back to it.
type YouTubeClient struct {
	auth *Auth
}

type Auth struct {
	config    *oauth2.Config
	tokenPath string
}

func NewAuth(clientID, clientSecret, tokenPath string) *Auth {
	return &Auth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		},
		tokenPath: tokenPath,
	}
}

// Client returns an HTTP client that refreshes and re-persists the
// stored token as needed.
func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	data, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}

	source := a.config.TokenSource(ctx, &token)
	refreshed, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	if refreshed.AccessToken != token.AccessToken {
		if data, err := json.Marshal(refreshed); err == nil {
			_ = os.WriteFile(a.tokenPath, data, 0600)
		}
	}

	return oauth2.NewClient(ctx, source), nil
}

func NewYouTubeClient(auth *Auth) *YouTubeClient {
	return &YouTubeClient{auth: auth}
}

type videoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId"`
}

type videoStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type videoMetadata struct {
	Snippet videoSnippet `json:"snippet"`
	Status  videoStatus  `json:"status"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

func (c *YouTubeClient) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	httpClient, err := c.auth.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("get auth client: %w", err)
	}

	privacy := req.Privacy
	if privacy == "" {
		privacy = "private"
	}

	metadata := videoMetadata{
		Snippet: videoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryID:  categoryID,
		},
		Status: videoStatus{PrivacyStatus: privacy},
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metadataPart, err := writer.CreateFormField("snippet")
	if err != nil {
		return nil, fmt.Errorf("create metadata part: %w", err)
	}
	if _, err := metadataPart.Write(metadataJSON); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	videoPart, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("create video part: %w", err)
	}
	if _, err := io.Copy(videoPart, req.Media); err != nil {
		return nil, fmt.Errorf("copy video: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	url := fmt.Sprintf("%s?uploadType=multipart&part=snippet,status", uploadURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube upload: %s: %s", resp.Status, string(respBody))
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if uploaded.ID == "" {
		return nil, fmt.Errorf("youtube upload: no video id in response")
	}

	return &UploadResponse{
		VideoID: uploaded.ID,
		URL:     "https://youtube.com/watch?v=" + uploaded.ID,
	}, nil
}
