package scenemedia

import (
	"context"
	"fmt"
	"log/slog"

	"contentflow/internal/media"
	"contentflow/internal/store"
)

// Store is the slice of the persistent store the scene media worker needs.
type Store interface {
	GetContentItem(ctx context.Context, id string) (*store.ContentItem, error)
	SetGenerationStage(ctx context.Context, id string, stage store.Stage) error
	SetItemVideoStatus(ctx context.Context, id string, status store.ItemVideoStatus) error
	ScenesForItem(ctx context.Context, itemID string) ([]store.Scene, error)
	GetOrCreateSceneMedia(ctx context.Context, sceneID uint) (*store.SceneMedia, error)
	MarkSceneGenerating(ctx context.Context, mediaID uint) error
	MarkSceneCompleted(ctx context.Context, mediaID uint, url string) error
	MarkSceneFailed(ctx context.Context, mediaID uint, message string) error
	SceneMediaForItem(ctx context.Context, itemID string) (map[uint]store.SceneMedia, error)
}

// MediaGenerator is the two-phase scene media gateway.
type MediaGenerator interface {
	Generate(ctx context.Context, req media.Request) (*media.Result, error)
}

// Options control the asset requests made per scene.
type Options struct {
	AspectRatio string
	Quality     string
}

// Worker generates the visual asset for every scene of one content
// item. Scenes are processed sequentially and fail independently;
// re-invocation reprocesses only scenes that have not completed.
type Worker struct {
	store   Store
	gateway MediaGenerator
	opts    Options
}

func NewWorker(s Store, gateway MediaGenerator, opts Options) *Worker {
	if opts.AspectRatio == "" {
		opts.AspectRatio = "9:16"
	}
	if opts.Quality == "" {
		opts.Quality = "standard"
	}
	return &Worker{store: s, gateway: gateway, opts: opts}
}

// Run processes all scenes of the item and rolls the results up into
// the item's video status. The item advances to the music stage only
// when every scene completed.
func (w *Worker) Run(ctx context.Context, itemID string) error {
	item, err := w.store.GetContentItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("scene media for %s: %w", itemID, err)
	}

	// Re-running a finished item must not move it backwards: the stage
	// pointer may already be past video_creation.
	if item.VideoStatus == store.VideoCompleted {
		slog.Debug("Scene media already complete", "item", item.ID)
		return nil
	}

	if err := w.store.SetGenerationStage(ctx, item.ID, store.StageVideo); err != nil {
		return err
	}
	if err := w.store.SetItemVideoStatus(ctx, item.ID, store.VideoInProgress); err != nil {
		return err
	}

	scenes, err := w.store.ScenesForItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		return fmt.Errorf("scene media for %s: item has no scenes", itemID)
	}

	for _, scene := range scenes {
		if err := w.processScene(ctx, scene); err != nil {
			// Failure isolation: the error is already recorded on the
			// scene's media row; siblings still get processed.
			slog.Error("Scene failed", "item", item.ID, "scene", scene.SceneNumber, "error", err)
		}
	}

	return w.rollup(ctx, item.ID)
}

func (w *Worker) processScene(ctx context.Context, scene store.Scene) error {
	sceneMedia, err := w.store.GetOrCreateSceneMedia(ctx, scene.ID)
	if err != nil {
		return err
	}

	// Completed scenes are a no-op on re-runs.
	if sceneMedia.VideoStatus == store.MediaCompleted {
		slog.Debug("Scene already completed", "scene", scene.SceneNumber)
		return nil
	}

	if err := w.store.MarkSceneGenerating(ctx, sceneMedia.ID); err != nil {
		return err
	}

	result, err := w.gateway.Generate(ctx, media.Request{
		Prompt:      scene.VisualDescription,
		AspectRatio: w.opts.AspectRatio,
		Quality:     w.opts.Quality,
	})
	if err != nil {
		if markErr := w.store.MarkSceneFailed(ctx, sceneMedia.ID, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}

	slog.Info("Scene media generated", "scene", scene.SceneNumber, "provider", result.Provider, "enhanced", result.Enhanced)
	return w.store.MarkSceneCompleted(ctx, sceneMedia.ID, result.URL)
}

func (w *Worker) rollup(ctx context.Context, itemID string) error {
	scenes, err := w.store.ScenesForItem(ctx, itemID)
	if err != nil {
		return err
	}
	mediaRows, err := w.store.SceneMediaForItem(ctx, itemID)
	if err != nil {
		return err
	}

	statuses := make([]store.MediaStatus, len(scenes))
	for i, scene := range scenes {
		if row, ok := mediaRows[scene.ID]; ok {
			statuses[i] = row.VideoStatus
		} else {
			statuses[i] = store.MediaNotStarted
		}
	}

	status := store.RollupVideoStatus(statuses)
	if err := w.store.SetItemVideoStatus(ctx, itemID, status); err != nil {
		return err
	}

	if status == store.VideoCompleted {
		if err := w.store.SetGenerationStage(ctx, itemID, store.StageMusic); err != nil {
			return err
		}
	}

	slog.Info("Scene media pass finished", "item", itemID, "status", status)
	return nil
}
