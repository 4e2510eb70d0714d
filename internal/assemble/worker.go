package assemble

import (
	"context"
	"fmt"
	"log/slog"

	"contentflow/internal/composer"
	"contentflow/internal/speech"
	"contentflow/internal/storage"
	"contentflow/internal/store"
)

// Store is the slice of the persistent store the assembly worker needs.
type Store interface {
	GetContentItem(ctx context.Context, id string) (*store.ContentItem, error)
	GetChannel(ctx context.Context, id string) (*store.Channel, error)
	ScenesForItem(ctx context.Context, itemID string) ([]store.Scene, error)
	SceneMediaForItem(ctx context.Context, itemID string) (map[uint]store.SceneMedia, error)
	SetGenerationStage(ctx context.Context, id string, stage store.Stage) error
	SetMusicStatus(ctx context.Context, id string, status store.StageStatus) error
	SetVideoArtifact(ctx context.Context, id, path string) error
	SetItemFailed(ctx context.Context, id, message string) error
}

// RenderOptions feed the compositing config block.
type RenderOptions struct {
	ParallaxSpeed      float64
	TransitionDuration float64
	FrameRate          int
	MusicTrack         string
	MusicVolume        float64
}

// Worker synthesizes narration, composes the final video through the
// external compositing service and stores the artifact. There is no
// automatic retry; a failed item stays failed until re-triggered.
type Worker struct {
	store     Store
	tts       speech.Synthesizer
	renderer  composer.Renderer
	artifacts storage.ArtifactStore
	opts      RenderOptions
}

func NewWorker(s Store, tts speech.Synthesizer, renderer composer.Renderer, artifacts storage.ArtifactStore, opts RenderOptions) *Worker {
	if opts.FrameRate == 0 {
		opts.FrameRate = 30
	}
	if opts.TransitionDuration == 0 {
		opts.TransitionDuration = 0.5
	}
	return &Worker{store: s, tts: tts, renderer: renderer, artifacts: artifacts, opts: opts}
}

// Run assembles one content item whose scenes are complete.
func (w *Worker) Run(ctx context.Context, itemID string) error {
	item, err := w.store.GetContentItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("assemble %s: %w", itemID, err)
	}
	if item.VideoStatus != store.VideoCompleted {
		return fmt.Errorf("assemble %s: scenes not complete (video status %s)", itemID, item.VideoStatus)
	}

	channel, err := w.store.GetChannel(ctx, item.ChannelID)
	if err != nil {
		return w.fail(ctx, itemID, fmt.Errorf("load channel: %w", err))
	}

	voiceID := speech.ResolveVoice(channel.VoiceName)
	slog.Info("Synthesizing narration", "item", itemID, "voice", channel.VoiceName, "voice_id", voiceID)

	audio, err := w.tts.Synthesize(ctx, item.Script, voiceID)
	if err != nil {
		return w.fail(ctx, itemID, fmt.Errorf("synthesize narration: %w", err))
	}

	clips, totalDuration, err := w.buildTimeline(ctx, itemID)
	if err != nil {
		return w.fail(ctx, itemID, err)
	}

	slog.Info("Compositing video", "item", itemID, "scenes", len(clips), "duration", totalDuration)
	video, err := w.renderer.Compose(ctx, composer.Request{
		Title:  item.Title,
		Audio:  audio,
		Scenes: clips,
		Config: composer.RenderConfig{
			ParallaxSpeed:      w.opts.ParallaxSpeed,
			TransitionDuration: w.opts.TransitionDuration,
			EnableAudioSync:    true,
			TotalDuration:      totalDuration,
			FrameRate:          w.opts.FrameRate,
			MusicTrack:         w.opts.MusicTrack,
			MusicVolume:        w.opts.MusicVolume,
		},
	})
	if err != nil {
		return w.fail(ctx, itemID, fmt.Errorf("compose video: %w", err))
	}

	// The compositor mixes the track into the render, so the music stage
	// is only done once the render succeeded.
	if w.opts.MusicTrack != "" {
		if err := w.store.SetMusicStatus(ctx, itemID, store.StageCompleted); err != nil {
			return err
		}
	}

	path := storage.ArtifactPath(itemID)
	url, err := w.artifacts.Save(ctx, path, video)
	if err != nil {
		return w.fail(ctx, itemID, fmt.Errorf("store artifact: %w", err))
	}

	if err := w.store.SetVideoArtifact(ctx, itemID, path); err != nil {
		return err
	}
	if err := w.store.SetGenerationStage(ctx, itemID, store.StagePost); err != nil {
		return err
	}

	slog.Info("Item assembled", "item", itemID, "url", url)
	return nil
}

// buildTimeline pairs each scene with its media URL, ordered by scene
// number. Total duration comes from the last scene's end time.
func (w *Worker) buildTimeline(ctx context.Context, itemID string) ([]composer.SceneClip, float64, error) {
	scenes, err := w.store.ScenesForItem(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	mediaRows, err := w.store.SceneMediaForItem(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}

	clips := make([]composer.SceneClip, 0, len(scenes))
	totalDuration := 0.0
	for _, scene := range scenes {
		row, ok := mediaRows[scene.ID]
		if !ok || row.VideoURL == "" {
			return nil, 0, fmt.Errorf("scene %d has no media asset", scene.SceneNumber)
		}
		clips = append(clips, composer.SceneClip{
			ImageURL:      row.VideoURL,
			StartTime:     scene.StartSeconds,
			EndTime:       scene.EndSeconds,
			Duration:      scene.EndSeconds - scene.StartSeconds,
			SceneNumber:   scene.SceneNumber,
			NarrationText: scene.NarrationText,
		})
		totalDuration = scene.EndSeconds
	}

	return clips, totalDuration, nil
}

func (w *Worker) fail(ctx context.Context, itemID string, err error) error {
	if markErr := w.store.SetItemFailed(ctx, itemID, err.Error()); markErr != nil {
		slog.Error("Failed to record assembly failure", "item", itemID, "error", markErr)
	}
	return fmt.Errorf("assemble %s: %w", itemID, err)
}
