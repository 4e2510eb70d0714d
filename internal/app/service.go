package app

import (
	"context"
	"fmt"
	"log/slog"

	"contentflow/internal/assemble"
	"contentflow/internal/generate"
	"contentflow/internal/monitor"
	"contentflow/internal/publish"
	"contentflow/internal/scenemedia"
	"contentflow/internal/store"
	"contentflow/pkg/config"
)

// Service bundles the store and the stateless workers. Workers share
// no in-process state; every invocation reads its world from the store.
type Service struct {
	cfg        *config.Config
	store      *store.Store
	scheduler  *monitor.Scheduler
	generator  *generate.Worker
	sceneMedia *scenemedia.Worker
	assembler  *assemble.Worker
	publisher  *publish.Worker
}

func (s *Service) Store() *store.Store { return s.store }

// RunMonitoring executes one monitoring pass.
func (s *Service) RunMonitoring(ctx context.Context) error {
	return s.scheduler.Run(ctx)
}

// RunGeneration drains one batch of the generation queue and returns
// the ids of created content items.
func (s *Service) RunGeneration(ctx context.Context) ([]string, error) {
	return s.generator.Run(ctx)
}

// RunSceneMedia generates scene assets for one content item.
func (s *Service) RunSceneMedia(ctx context.Context, itemID string) error {
	return s.sceneMedia.Run(ctx, itemID)
}

// RunAssembly assembles one content item into its final artifact.
func (s *Service) RunAssembly(ctx context.Context, itemID string) error {
	if s.assembler == nil {
		return fmt.Errorf("assembly is not configured")
	}
	return s.assembler.Run(ctx, itemID)
}

// RunPublish uploads one finished item.
func (s *Service) RunPublish(ctx context.Context, itemID string) error {
	if s.publisher == nil {
		return fmt.Errorf("publishing is not configured: set YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET")
	}
	return s.publisher.Run(ctx, itemID)
}

// ProcessItem pushes one item through the media stage and, when all
// scenes complete, on through assembly. A partially failed item is
// left where it is; a later invocation resumes it.
func (s *Service) ProcessItem(ctx context.Context, itemID string) error {
	if err := s.RunSceneMedia(ctx, itemID); err != nil {
		return err
	}

	item, err := s.store.GetContentItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.VideoStatus != store.VideoCompleted {
		slog.Info("Item not ready for assembly", "item", itemID, "video_status", item.VideoStatus)
		return nil
	}

	if s.assembler == nil {
		slog.Warn("Scenes complete but assembly is not configured", "item", itemID)
		return nil
	}

	return s.RunAssembly(ctx, itemID)
}
