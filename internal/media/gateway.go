package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Gateway is the two-phase scene media pipeline. Phase 1 walks the
// provider fallback chain for a base image; phase 2 optionally adds
// motion and degrades to the phase-1 result when it fails.
type Gateway struct {
	providers []Provider
	enhancer  Enhancer
}

func NewGateway(providers []Provider, enhancer Enhancer) *Gateway {
	return &Gateway{providers: providers, enhancer: enhancer}
}

// Providers returns the phase-1 fallback order.
func (g *Gateway) Providers() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name()
	}
	return names
}

func (g *Gateway) Generate(ctx context.Context, req Request) (*Result, error) {
	base, err := g.generateBase(ctx, req)
	if err != nil {
		return nil, err
	}

	return g.enhance(ctx, base, req), nil
}

func (g *Gateway) generateBase(ctx context.Context, req Request) (*Result, error) {
	if len(g.providers) == 0 {
		return nil, fmt.Errorf("no media providers configured")
	}

	var failures []string
	for _, provider := range g.providers {
		url, err := provider.GenerateImage(ctx, req)
		if err != nil {
			slog.Warn("Media provider failed, trying next", "provider", provider.Name(), "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", provider.Name(), err))
			continue
		}
		if url == "" {
			failures = append(failures, fmt.Sprintf("%s: empty asset url", provider.Name()))
			continue
		}
		return &Result{URL: url, Provider: provider.Name()}, nil
	}

	return nil, fmt.Errorf("all media providers failed: %s", strings.Join(failures, "; "))
}

// enhance runs the motion pass and falls back to the base result on any
// error. Enhancement failure is never fatal to the scene.
func (g *Gateway) enhance(ctx context.Context, base *Result, req Request) *Result {
	if g.enhancer == nil {
		return base
	}

	url, err := g.enhancer.AddMotion(ctx, base.URL, req)
	if err != nil || url == "" {
		slog.Warn("Motion enhancement failed, keeping base asset", "enhancer", g.enhancer.Name(), "error", err)
		return base
	}

	return &Result{URL: url, Provider: base.Provider, Enhanced: true}
}
