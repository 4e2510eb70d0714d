package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name         string
		serverStatus int
		responseBody []byte
		wantErr      bool
	}{
		{
			name:         "successfulSynthesis",
			serverStatus: http.StatusOK,
			responseBody: []byte("fake-mp3-bytes"),
			wantErr:      false,
		},
		{
			name:         "emptyAudio",
			serverStatus: http.StatusOK,
			responseBody: nil,
			wantErr:      true,
		},
		{
			name:         "apiErrorWithDetail",
			serverStatus: http.StatusUnauthorized,
			responseBody: []byte(`{"detail":{"message":"invalid api key"}}`),
			wantErr:      true,
		},
		{
			name:         "serverError",
			serverStatus: http.StatusInternalServerError,
			responseBody: []byte("internal error"),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.Header.Get("xi-api-key") != "test-key" {
					t.Errorf("expected xi-api-key header")
				}
				if !strings.HasSuffix(r.URL.Path, "/voice-123") {
					t.Errorf("expected voice id in path, got %s", r.URL.Path)
				}

				var req elevenlabsRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				if req.Text != "Hello world" {
					t.Errorf("text = %q, want %q", req.Text, "Hello world")
				}
				if req.ModelID == "" {
					t.Error("expected model id in request")
				}

				w.WriteHeader(tt.serverStatus)
				_, _ = w.Write(tt.responseBody)
			}))
			defer server.Close()

			client := NewElevenLabsClient("test-key", ElevenLabsOptions{})
			client.SetBaseURL(server.URL)

			audio, err := client.Synthesize(context.Background(), "Hello world", "voice-123")

			if (err != nil) != tt.wantErr {
				t.Errorf("Synthesize() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && string(audio) != string(tt.responseBody) {
				t.Errorf("Synthesize() = %q, want %q", audio, tt.responseBody)
			}
		})
	}
}

func TestNewElevenLabsClientDefaults(t *testing.T) {
	client := NewElevenLabsClient("key", ElevenLabsOptions{})
	if client.model != defaultModel {
		t.Errorf("model = %q, want %q", client.model, defaultModel)
	}
	if client.stability != defaultStability {
		t.Errorf("stability = %v, want %v", client.stability, defaultStability)
	}

	custom := NewElevenLabsClient("key", ElevenLabsOptions{Model: "eleven_turbo_v2", Stability: 0.8, Similarity: 0.9})
	if custom.model != "eleven_turbo_v2" || custom.stability != 0.8 || custom.similarity != 0.9 {
		t.Error("options not applied")
	}
}
