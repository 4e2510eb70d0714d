package media

import "context"

// Request asks for one scene's visual asset.
type Request struct {
	Prompt      string
	AspectRatio string
	Quality     string
}

// Result is the asset the gateway settled on. Enhanced is true when the
// motion pass succeeded; otherwise URL is the phase-1 still.
type Result struct {
	URL      string
	Provider string
	Enhanced bool
}

// Provider produces a base image asset for a prompt.
type Provider interface {
	Name() string
	GenerateImage(ctx context.Context, req Request) (string, error)
}

// Enhancer turns a still image into a motion asset. Enhancement is
// best-effort; callers must treat its failure as non-fatal.
type Enhancer interface {
	Name() string
	AddMotion(ctx context.Context, imageURL string, req Request) (string, error)
}
