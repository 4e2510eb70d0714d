package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contentflow/internal/script"
	"contentflow/internal/store"
)

const defaultBatchSize = 5

// Store is the slice of the persistent store the generation worker needs.
type Store interface {
	PendingGeneration(ctx context.Context, limit int) ([]store.GenerationQueueEntry, error)
	MarkGenerationProcessing(ctx context.Context, id string) error
	MarkGenerationCompleted(ctx context.Context, id string) error
	MarkGenerationFailed(ctx context.Context, id, message string) error
	GetChannel(ctx context.Context, id string) (*store.Channel, error)
	UsedTopicKeywords(ctx context.Context, channelID string) ([]string, error)
	CreateContentItem(ctx context.Context, item *store.ContentItem, scenes []store.Scene) error
}

// ContentGenerator is the LLM content gateway.
type ContentGenerator interface {
	Generate(ctx context.Context, req script.Request) (*script.Content, error)
}

// Worker drains pending generation queue entries and turns each into
// content items with scene breakdowns.
type Worker struct {
	store     Store
	gateway   ContentGenerator
	batchSize int
}

func NewWorker(s Store, gateway ContentGenerator, batchSize int) *Worker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Worker{store: s, gateway: gateway, batchSize: batchSize}
}

// Run processes up to one batch of pending entries sequentially.
// Returns the ids of content items created during the pass so callers
// can push them into the media stage.
func (w *Worker) Run(ctx context.Context) ([]string, error) {
	entries, err := w.store.PendingGeneration(ctx, w.batchSize)
	if err != nil {
		return nil, fmt.Errorf("generation pass: %w", err)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	slog.Info("Generation pass started", "entries", len(entries))

	var created []string
	for _, entry := range entries {
		ids, err := w.processEntry(ctx, entry)
		created = append(created, ids...)
		if err != nil {
			slog.Error("Queue entry failed", "entry", entry.ID, "channel", entry.ChannelID, "error", err)
		}
	}

	return created, nil
}

// processEntry generates entry.ItemsToGenerate items. A failed
// iteration fails the whole entry but keeps items already written.
func (w *Worker) processEntry(ctx context.Context, entry store.GenerationQueueEntry) ([]string, error) {
	if err := w.store.MarkGenerationProcessing(ctx, entry.ID); err != nil {
		return nil, err
	}

	channel, err := w.store.GetChannel(ctx, entry.ChannelID)
	if err != nil {
		failErr := fmt.Errorf("load channel: %w", err)
		_ = w.store.MarkGenerationFailed(ctx, entry.ID, failErr.Error())
		return nil, failErr
	}

	usedTopics, err := w.store.UsedTopicKeywords(ctx, entry.ChannelID)
	if err != nil {
		failErr := fmt.Errorf("load used topics: %w", err)
		_ = w.store.MarkGenerationFailed(ctx, entry.ID, failErr.Error())
		return nil, failErr
	}

	var created []string
	for i := 0; i < entry.ItemsToGenerate; i++ {
		itemID, newTopics, err := w.generateItem(ctx, channel, usedTopics)
		if err != nil {
			genErr := fmt.Errorf("item %d of %d: %w", i+1, entry.ItemsToGenerate, err)
			_ = w.store.MarkGenerationFailed(ctx, entry.ID, genErr.Error())
			return created, genErr
		}
		created = append(created, itemID)
		usedTopics = append(usedTopics, newTopics...)
	}

	if err := w.store.MarkGenerationCompleted(ctx, entry.ID); err != nil {
		return created, err
	}

	slog.Info("Queue entry completed", "entry", entry.ID, "channel", entry.ChannelID, "items", len(created))
	return created, nil
}

func (w *Worker) generateItem(ctx context.Context, channel *store.Channel, usedTopics []string) (string, []string, error) {
	content, err := w.gateway.Generate(ctx, script.Request{
		ChannelName:    channel.Name,
		TopicMode:      channel.TopicMode,
		Topics:         channel.Topics,
		Styles:         channel.VideoStyles,
		UsedTopics:     usedTopics,
		TargetDuration: channel.Schedule.TargetDuration(),
		UniqueID:       uuid.NewString(),
	})
	if err != nil {
		return "", nil, err
	}

	item := &store.ContentItem{
		ID:              uuid.NewString(),
		ChannelID:       channel.ID,
		Title:           content.Title,
		Script:          content.Script,
		DurationSeconds: content.DurationSeconds,
		TopicKeywords:   content.TopicKeywords,
		Status:          store.ContentGenerating,
		ScriptStatus:    store.StageCompleted,
		VideoStatus:     store.VideoNotStarted,
		MusicStatus:     store.StagePending,
		PostStatus:      store.StagePending,
		GenerationStage: store.StageVideo,
	}

	scenes := make([]store.Scene, len(content.Scenes))
	for i, s := range content.Scenes {
		scenes[i] = store.Scene{
			SceneNumber:       s.SceneNumber,
			StartSeconds:      s.StartSeconds,
			EndSeconds:        s.EndSeconds,
			VisualDescription: s.VisualDescription,
			NarrationText:     s.NarrationText,
		}
	}

	if err := w.store.CreateContentItem(ctx, item, scenes); err != nil {
		return "", nil, err
	}

	slog.Info("Content item created", "item", item.ID, "title", item.Title, "scenes", len(scenes))
	return item.ID, content.TopicKeywords, nil
}
