package store

import (
	"time"

	"gorm.io/datatypes"
)

// Schedule is how often a channel expects new content.
type Schedule string

const (
	ScheduleMonthly    Schedule = "monthly"
	ScheduleWeekly     Schedule = "weekly"
	ScheduleDaily      Schedule = "daily"
	ScheduleTwiceDaily Schedule = "twice-daily"
)

// RequiredItems returns how many ready items a channel on this schedule
// should have on hand at any time.
func (s Schedule) RequiredItems() int {
	switch s {
	case ScheduleMonthly:
		return 1
	case ScheduleWeekly:
		return 4
	case ScheduleDaily:
		return 30
	case ScheduleTwiceDaily:
		return 60
	default:
		return 1
	}
}

// Priority ranks schedules for the generation queue. More frequent
// schedules drain first.
func (s Schedule) Priority() int {
	switch s {
	case ScheduleWeekly:
		return 1
	case ScheduleDaily:
		return 2
	case ScheduleTwiceDaily:
		return 3
	default:
		return 0
	}
}

// TargetDuration returns the target video length in seconds for items
// generated on this schedule.
func (s Schedule) TargetDuration() int {
	switch s {
	case ScheduleMonthly:
		return 60
	case ScheduleWeekly:
		return 45
	default:
		return 30
	}
}

type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueProcessing QueueStatus = "processing"
	QueueCompleted  QueueStatus = "completed"
	QueueFailed     QueueStatus = "failed"
)

type MonitoringStatus string

const (
	MonitoringActive MonitoringStatus = "active"
	MonitoringPaused MonitoringStatus = "paused"
)

type ContentStatus string

const (
	ContentGenerating ContentStatus = "generating"
	ContentReady      ContentStatus = "ready"
	ContentPublished  ContentStatus = "published"
	ContentFailed     ContentStatus = "failed"
)

// MediaStatus tracks a single scene's media generation.
type MediaStatus string

const (
	MediaNotStarted MediaStatus = "not_started"
	MediaGenerating MediaStatus = "generating"
	MediaCompleted  MediaStatus = "completed"
	MediaFailed     MediaStatus = "failed"
)

// ItemVideoStatus is the rollup of all scene media statuses for an item.
type ItemVideoStatus string

const (
	VideoNotStarted ItemVideoStatus = "not_started"
	VideoInProgress ItemVideoStatus = "in_progress"
	VideoCompleted  ItemVideoStatus = "completed"
	VideoFailed     ItemVideoStatus = "failed"
)

// Stage is the sub-pipeline a content item is currently in.
type Stage string

const (
	StageScript Stage = "script_generation"
	StageVideo  Stage = "video_creation"
	StageMusic  Stage = "music_creation"
	StagePost   Stage = "post_generation"
)

type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
	StageFailed     StageStatus = "failed"
)

// Channel configuration is owned by the account system; the pipeline
// only reads it.
type Channel struct {
	ID          string                      `gorm:"primaryKey"`
	Name        string                      `gorm:"size:255"`
	Schedule    Schedule                    `gorm:"size:32;not null"`
	Active      bool                        `gorm:"not null;default:true"`
	TopicMode   string                      `gorm:"size:32"`
	Topics      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	VideoStyles datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	VoiceName   string                      `gorm:"size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Channel) TableName() string { return "channels" }

type MonitoringQueueEntry struct {
	ID            uint             `gorm:"primaryKey"`
	ChannelID     string           `gorm:"uniqueIndex;not null"`
	Status        MonitoringStatus `gorm:"size:32;not null;default:'active'"`
	LastCheckedAt *time.Time
	NextCheckAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (MonitoringQueueEntry) TableName() string { return "monitoring_queue" }

type GenerationQueueEntry struct {
	ID              string      `gorm:"primaryKey"`
	ChannelID       string      `gorm:"index;not null"`
	ItemsToGenerate int         `gorm:"not null"`
	Priority        int         `gorm:"not null;index"`
	Status          QueueStatus `gorm:"size:32;not null;default:'pending';index"`
	ErrorMessage    string      `gorm:"type:text"`
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (GenerationQueueEntry) TableName() string { return "generation_queue" }

type ContentItem struct {
	ID              string                      `gorm:"primaryKey"`
	ChannelID       string                      `gorm:"index;not null"`
	Title           string                      `gorm:"size:255"`
	Script          string                      `gorm:"type:text"`
	DurationSeconds float64                     `gorm:"not null"`
	TopicKeywords   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Status          ContentStatus               `gorm:"size:32;not null;default:'generating'"`
	ScriptStatus    StageStatus                 `gorm:"size:32;not null;default:'pending'"`
	VideoStatus     ItemVideoStatus             `gorm:"size:32;not null;default:'not_started'"`
	MusicStatus     StageStatus                 `gorm:"size:32;not null;default:'pending'"`
	PostStatus      StageStatus                 `gorm:"size:32;not null;default:'pending'"`
	GenerationStage Stage                       `gorm:"size:32;not null;default:'script_generation'"`
	VideoFilePath   string                      `gorm:"size:512"`
	ErrorMessage    string                      `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ContentItem) TableName() string { return "content_items" }

// Scene rows are immutable once created. Scene numbers are 1-based and
// contiguous, and the start/end times tile the item's total duration.
type Scene struct {
	ID                uint    `gorm:"primaryKey"`
	ContentItemID     string  `gorm:"index;not null"`
	SceneNumber       int     `gorm:"not null"`
	StartSeconds      float64 `gorm:"not null"`
	EndSeconds        float64 `gorm:"not null"`
	VisualDescription string  `gorm:"type:text;not null"`
	NarrationText     string  `gorm:"type:text;not null"`
	CreatedAt         time.Time
}

func (Scene) TableName() string { return "scenes" }

// SceneMedia is created lazily, one row per scene.
type SceneMedia struct {
	ID           uint        `gorm:"primaryKey"`
	SceneID      uint        `gorm:"uniqueIndex;not null"`
	VideoURL     string      `gorm:"size:1024"`
	VideoStatus  MediaStatus `gorm:"size:32;not null;default:'not_started'"`
	ErrorMessage string      `gorm:"type:text"`
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SceneMedia) TableName() string { return "scene_media" }
