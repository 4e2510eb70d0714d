package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"contentflow/internal/storage"
	"contentflow/internal/store"
)

// Store is the slice of the persistent store the publish worker needs.
type Store interface {
	GetContentItem(ctx context.Context, id string) (*store.ContentItem, error)
	SetPostStatus(ctx context.Context, id string, status store.StageStatus) error
	UpdateContentItem(ctx context.Context, id string, updates map[string]any) error
}

// Worker uploads a finished artifact and marks the item published.
type Worker struct {
	store     Store
	uploader  Uploader
	artifacts storage.ArtifactStore
	privacy   string
}

func NewWorker(s Store, uploader Uploader, artifacts storage.ArtifactStore, privacy string) *Worker {
	return &Worker{store: s, uploader: uploader, artifacts: artifacts, privacy: privacy}
}

func (w *Worker) Run(ctx context.Context, itemID string) error {
	item, err := w.store.GetContentItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("publish %s: %w", itemID, err)
	}
	if item.Status != store.ContentReady || item.VideoFilePath == "" {
		return fmt.Errorf("publish %s: item not ready (status %s)", itemID, item.Status)
	}

	if err := w.store.SetPostStatus(ctx, itemID, store.StageInProgress); err != nil {
		return err
	}

	videoPath, media, err := w.openArtifact(ctx, item)
	if err != nil {
		_ = w.store.SetPostStatus(ctx, itemID, store.StageFailed)
		return fmt.Errorf("publish %s: %w", itemID, err)
	}
	defer func() { _ = media.Close() }()

	resp, err := w.uploader.Upload(ctx, UploadRequest{
		Media:       media,
		Filename:    path.Base(videoPath),
		Title:       item.Title,
		Description: item.Script,
		Tags:        item.TopicKeywords,
		Privacy:     w.privacy,
	})
	if err != nil {
		_ = w.store.SetPostStatus(ctx, itemID, store.StageFailed)
		return fmt.Errorf("publish %s: %w", itemID, err)
	}

	if err := w.store.UpdateContentItem(ctx, itemID, map[string]any{
		"status":      store.ContentPublished,
		"post_status": store.StageCompleted,
	}); err != nil {
		return err
	}

	slog.Info("Item published", "item", itemID, "url", resp.URL)
	return nil
}

// openArtifact opens the item's recorded artifact. When the recorded
// path is gone (a re-render replaced it) the newest artifact under the
// item's prefix is used instead.
func (w *Worker) openArtifact(ctx context.Context, item *store.ContentItem) (string, io.ReadCloser, error) {
	media, err := w.artifacts.Open(ctx, item.VideoFilePath)
	if err == nil {
		return item.VideoFilePath, media, nil
	}

	slog.Warn("Recorded artifact unavailable, looking for a newer render", "item", item.ID, "path", item.VideoFilePath, "error", err)

	paths, listErr := w.artifacts.List(ctx, storage.ArtifactPrefix(item.ID))
	if listErr != nil || len(paths) == 0 {
		return "", nil, err
	}

	latest := paths[len(paths)-1]
	media, err = w.artifacts.Open(ctx, latest)
	if err != nil {
		return "", nil, err
	}
	return latest, media, nil
}
