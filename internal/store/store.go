package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the only shared mutable state in the pipeline. All worker
// coordination happens through row status fields.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres and runs migrations.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&Channel{},
		&MonitoringQueueEntry{},
		&GenerationQueueEntry{},
		&ContentItem{},
		&Scene{},
		&SceneMedia{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) ActiveChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	if err := s.db.WithContext(ctx).Where("active = ?", true).Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("list active channels: %w", err)
	}
	return channels, nil
}

func (s *Store) GetChannel(ctx context.Context, id string) (*Channel, error) {
	var channel Channel
	if err := s.db.WithContext(ctx).First(&channel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &channel, nil
}

// CountReadyContent counts items that are ready to publish or already
// published; these satisfy the channel's schedule requirement.
func (s *Store) CountReadyContent(ctx context.Context, channelID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ContentItem{}).
		Where("channel_id = ? AND status IN ?", channelID, []ContentStatus{ContentReady, ContentPublished}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count ready content: %w", err)
	}
	return int(count), nil
}

// EnqueueGeneration inserts a pending queue entry unless the channel
// already has one pending or processing. The insert-if-absent is a
// single statement, so concurrent monitoring passes cannot double
// enqueue. Returns false when an active entry already existed.
func (s *Store) EnqueueGeneration(ctx context.Context, channelID string, items, priority int) (bool, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Exec(`
		INSERT INTO generation_queue (id, channel_id, items_to_generate, priority, status, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM generation_queue
			WHERE channel_id = ? AND status IN (?, ?)
		)`,
		uuid.NewString(), channelID, items, priority, QueuePending, now, now,
		channelID, QueuePending, QueueProcessing,
	)
	if res.Error != nil {
		return false, fmt.Errorf("enqueue generation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RecordMonitoringCheck upserts the channel's monitoring entry and
// stamps the check times.
func (s *Store) RecordMonitoringCheck(ctx context.Context, channelID string, next time.Time) error {
	now := time.Now().UTC()
	entry := MonitoringQueueEntry{ChannelID: channelID, Status: MonitoringActive, NextCheckAt: next}
	err := s.db.WithContext(ctx).
		Where(MonitoringQueueEntry{ChannelID: channelID}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return fmt.Errorf("upsert monitoring entry: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&MonitoringQueueEntry{}).
		Where("channel_id = ?", channelID).
		Updates(map[string]any{"last_checked_at": now, "next_check_at": next}).Error
	if err != nil {
		return fmt.Errorf("record monitoring check: %w", err)
	}
	return nil
}

// PendingGeneration returns pending queue entries, highest priority
// first, oldest first within a priority.
func (s *Store) PendingGeneration(ctx context.Context, limit int) ([]GenerationQueueEntry, error) {
	var entries []GenerationQueueEntry
	err := s.db.WithContext(ctx).
		Where("status = ?", QueuePending).
		Order("priority DESC, created_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list pending generation: %w", err)
	}
	return entries, nil
}

func (s *Store) MarkGenerationProcessing(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return s.updateQueueEntry(ctx, id, map[string]any{
		"status":     QueueProcessing,
		"started_at": now,
	})
}

func (s *Store) MarkGenerationCompleted(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return s.updateQueueEntry(ctx, id, map[string]any{
		"status":       QueueCompleted,
		"completed_at": now,
	})
}

func (s *Store) MarkGenerationFailed(ctx context.Context, id, message string) error {
	now := time.Now().UTC()
	return s.updateQueueEntry(ctx, id, map[string]any{
		"status":        QueueFailed,
		"error_message": message,
		"completed_at":  now,
	})
}

func (s *Store) updateQueueEntry(ctx context.Context, id string, updates map[string]any) error {
	err := s.db.WithContext(ctx).Model(&GenerationQueueEntry{}).
		Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update queue entry: %w", err)
	}
	return nil
}

// UsedTopicKeywords collects the topic keywords of every existing item
// on the channel, deduplicated, so new generations avoid repetition.
func (s *Store) UsedTopicKeywords(ctx context.Context, channelID string) ([]string, error) {
	var items []ContentItem
	err := s.db.WithContext(ctx).
		Select("topic_keywords").
		Where("channel_id = ?", channelID).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load used topics: %w", err)
	}

	seen := make(map[string]bool)
	var topics []string
	for _, item := range items {
		for _, kw := range item.TopicKeywords {
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			topics = append(topics, kw)
		}
	}
	return topics, nil
}

// CreateContentItem inserts the item and its scenes in one transaction.
func (s *Store) CreateContentItem(ctx context.Context, item *ContentItem, scenes []Scene) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("create content item: %w", err)
		}
		for i := range scenes {
			scenes[i].ContentItemID = item.ID
		}
		if len(scenes) > 0 {
			if err := tx.Create(&scenes).Error; err != nil {
				return fmt.Errorf("create scenes: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) GetContentItem(ctx context.Context, id string) (*ContentItem, error) {
	var item ContentItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get content item: %w", err)
	}
	return &item, nil
}

func (s *Store) UpdateContentItem(ctx context.Context, id string, updates map[string]any) error {
	err := s.db.WithContext(ctx).Model(&ContentItem{}).
		Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update content item: %w", err)
	}
	return nil
}

func (s *Store) SetGenerationStage(ctx context.Context, id string, stage Stage) error {
	return s.UpdateContentItem(ctx, id, map[string]any{"generation_stage": stage})
}

func (s *Store) SetItemVideoStatus(ctx context.Context, id string, status ItemVideoStatus) error {
	return s.UpdateContentItem(ctx, id, map[string]any{"video_status": status})
}

func (s *Store) SetMusicStatus(ctx context.Context, id string, status StageStatus) error {
	return s.UpdateContentItem(ctx, id, map[string]any{"music_status": status})
}

func (s *Store) SetPostStatus(ctx context.Context, id string, status StageStatus) error {
	return s.UpdateContentItem(ctx, id, map[string]any{"post_status": status})
}

// SetItemFailed marks the item failed and records the error for
// operator visibility.
func (s *Store) SetItemFailed(ctx context.Context, id, message string) error {
	return s.UpdateContentItem(ctx, id, map[string]any{
		"status":        ContentFailed,
		"error_message": message,
	})
}

// SetVideoArtifact records the stored artifact and flips the item to
// ready in one update.
func (s *Store) SetVideoArtifact(ctx context.Context, id, path string) error {
	return s.UpdateContentItem(ctx, id, map[string]any{
		"video_file_path": path,
		"video_status":    VideoCompleted,
		"status":          ContentReady,
	})
}

func (s *Store) ScenesForItem(ctx context.Context, itemID string) ([]Scene, error) {
	var scenes []Scene
	err := s.db.WithContext(ctx).
		Where("content_item_id = ?", itemID).
		Order("scene_number ASC").
		Find(&scenes).Error
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return scenes, nil
}

// GetOrCreateSceneMedia returns the scene's media row, creating it lazily.
func (s *Store) GetOrCreateSceneMedia(ctx context.Context, sceneID uint) (*SceneMedia, error) {
	media := SceneMedia{SceneID: sceneID, VideoStatus: MediaNotStarted}
	err := s.db.WithContext(ctx).
		Where(SceneMedia{SceneID: sceneID}).
		FirstOrCreate(&media).Error
	if err != nil {
		return nil, fmt.Errorf("get or create scene media: %w", err)
	}
	return &media, nil
}

func (s *Store) MarkSceneGenerating(ctx context.Context, mediaID uint) error {
	return s.updateSceneMedia(ctx, mediaID, map[string]any{
		"video_status":  MediaGenerating,
		"error_message": "",
	})
}

func (s *Store) MarkSceneCompleted(ctx context.Context, mediaID uint, url string) error {
	now := time.Now().UTC()
	return s.updateSceneMedia(ctx, mediaID, map[string]any{
		"video_status":  MediaCompleted,
		"video_url":     url,
		"error_message": "",
		"completed_at":  now,
	})
}

func (s *Store) MarkSceneFailed(ctx context.Context, mediaID uint, message string) error {
	return s.updateSceneMedia(ctx, mediaID, map[string]any{
		"video_status":  MediaFailed,
		"error_message": message,
	})
}

func (s *Store) updateSceneMedia(ctx context.Context, mediaID uint, updates map[string]any) error {
	err := s.db.WithContext(ctx).Model(&SceneMedia{}).
		Where("id = ?", mediaID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update scene media: %w", err)
	}
	return nil
}

// SceneMediaForItem returns media rows keyed by scene id for every
// scene of the item. Scenes without a media row are absent.
func (s *Store) SceneMediaForItem(ctx context.Context, itemID string) (map[uint]SceneMedia, error) {
	var rows []SceneMedia
	err := s.db.WithContext(ctx).
		Joins("JOIN scenes ON scenes.id = scene_media.scene_id").
		Where("scenes.content_item_id = ?", itemID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list scene media: %w", err)
	}

	byScene := make(map[uint]SceneMedia, len(rows))
	for _, row := range rows {
		byScene[row.SceneID] = row
	}
	return byScene, nil
}
