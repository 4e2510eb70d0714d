package app

import (
	"context"
	"fmt"
	"log/slog"

	"contentflow/internal/assemble"
	"contentflow/internal/composer"
	"contentflow/internal/generate"
	"contentflow/internal/media"
	"contentflow/internal/media/luma"
	"contentflow/internal/media/replicate"
	"contentflow/internal/media/together"
	"contentflow/internal/monitor"
	"contentflow/internal/publish"
	"contentflow/internal/scenemedia"
	"contentflow/internal/script"
	"contentflow/internal/script/deepseek"
	"contentflow/internal/script/gemini"
	"contentflow/internal/script/groq"
	"contentflow/internal/speech"
	"contentflow/internal/storage"
	"contentflow/internal/store"
	"contentflow/pkg/config"
)

// BuildService wires the store, the provider registries and the
// workers. Provider fallback order is an explicit list built here from
// configured credentials, not ambient environment inspection at call
// time.
func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	scriptGateway, err := buildScriptGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mediaGateway, err := buildMediaGateway(cfg)
	if err != nil {
		return nil, err
	}

	artifacts, err := buildArtifactStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	service := &Service{
		cfg:       cfg,
		store:     st,
		scheduler: monitor.NewScheduler(st, cfg.Worker.CheckInterval),
		generator: generate.NewWorker(st, scriptGateway, cfg.Worker.BatchSize),
		sceneMedia: scenemedia.NewWorker(st, mediaGateway, scenemedia.Options{
			AspectRatio: cfg.Media.AspectRatio,
			Quality:     cfg.Media.Quality,
		}),
	}

	if cfg.ElevenLabsAPIKey != "" && cfg.ComposerURL != "" {
		tts := speech.NewElevenLabsClient(cfg.ElevenLabsAPIKey, speech.ElevenLabsOptions{
			Model:      cfg.Speech.Model,
			Stability:  cfg.Speech.Stability,
			Similarity: cfg.Speech.Similarity,
		})
		renderer := composer.NewClient(cfg.ComposerURL)
		service.assembler = assemble.NewWorker(st, tts, renderer, artifacts, assemble.RenderOptions{
			ParallaxSpeed:      cfg.Render.ParallaxSpeed,
			TransitionDuration: cfg.Render.TransitionDuration,
			FrameRate:          cfg.Render.FrameRate,
			MusicTrack:         cfg.Render.MusicTrack,
			MusicVolume:        cfg.Render.MusicVolume,
		})
	} else {
		slog.Warn("Assembly disabled: ELEVENLABS_API_KEY and COMPOSER_URL are required")
	}

	if cfg.YouTubeClientID != "" && cfg.YouTubeClientSecret != "" {
		auth := publish.NewAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTubeTokenPath)
		uploader := publish.NewYouTubeClient(auth)
		service.publisher = publish.NewWorker(st, uploader, artifacts, cfg.YouTube.PrivacyStatus)
	}

	return service, nil
}

func buildScriptGateway(ctx context.Context, cfg *config.Config) (*script.Gateway, error) {
	var providers []script.Provider

	if cfg.GroqAPIKey != "" {
		client, err := groq.NewClient(cfg.GroqAPIKey, cfg.Script.GroqModel)
		if err != nil {
			return nil, err
		}
		providers = append(providers, client)
	}
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.Script.GeminiModel)
		if err != nil {
			return nil, err
		}
		providers = append(providers, client)
	}
	if cfg.DeepSeekAPIKey != "" {
		providers = append(providers, deepseek.NewClient(cfg.DeepSeekAPIKey, cfg.Script.DeepSeekModel))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no script providers configured: set GROQ_API_KEY, GEMINI_API_KEY or DEEPSEEK_API_KEY")
	}

	gateway := script.NewGateway(providers...)
	slog.Info("Script providers configured", "order", gateway.Providers())
	return gateway, nil
}

func buildMediaGateway(cfg *config.Config) (*media.Gateway, error) {
	var providers []media.Provider

	if cfg.ReplicateAPIToken != "" {
		providers = append(providers, replicate.NewClient(cfg.ReplicateAPIToken, cfg.Media.ReplicateModel))
	}
	if cfg.TogetherAPIKey != "" {
		providers = append(providers, together.NewClient(cfg.TogetherAPIKey, cfg.Media.TogetherModel))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no media providers configured: set REPLICATE_API_TOKEN or TOGETHER_API_KEY")
	}

	var enhancer media.Enhancer
	if cfg.Media.Enhancement && cfg.LumaAPIKey != "" {
		enhancer = luma.NewClient(cfg.LumaAPIKey)
	}

	gateway := media.NewGateway(providers, enhancer)
	slog.Info("Media providers configured", "order", gateway.Providers(), "enhancement", enhancer != nil)
	return gateway, nil
}

func buildArtifactStore(ctx context.Context, cfg *config.Config) (storage.ArtifactStore, error) {
	if cfg.GCSBucket != "" {
		return storage.NewGCSStore(ctx, cfg.GCSBucket)
	}
	return storage.NewLocalStore(cfg.Storage.OutputDir, cfg.Storage.BaseURL), nil
}
