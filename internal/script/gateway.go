package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Gateway tries an ordered list of interchangeable providers and
// returns the first structurally valid result. Provider order is fixed
// at construction; a provider with no credentials is simply absent from
// the list.
type Gateway struct {
	providers []Provider
}

func NewGateway(providers ...Provider) *Gateway {
	return &Gateway{providers: providers}
}

// Providers returns the fallback order, primarily for logging and tests.
func (g *Gateway) Providers() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate walks the fallback chain. Transport errors and validation
// failures both move to the next provider; the accepted result is
// normalized before it is returned.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Content, error) {
	if len(g.providers) == 0 {
		return nil, fmt.Errorf("no script providers configured")
	}

	var failures []string
	for _, provider := range g.providers {
		content, err := provider.GenerateContent(ctx, req)
		if err == nil {
			err = Validate(content)
		}
		if err != nil {
			slog.Warn("Script provider failed, trying next", "provider", provider.Name(), "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", provider.Name(), err))
			continue
		}

		Normalize(content)
		slog.Info("Script generated", "provider", provider.Name(), "title", content.Title, "scenes", len(content.Scenes))
		return content, nil
	}

	return nil, fmt.Errorf("all script providers failed: %s", strings.Join(failures, "; "))
}
