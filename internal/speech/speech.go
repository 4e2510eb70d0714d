package speech

import "context"

// Synthesizer turns narration text into raw audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}
