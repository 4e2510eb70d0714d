package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contentflow/internal/store"
)

// Store is the slice of the persistent store the scheduler needs.
type Store interface {
	ActiveChannels(ctx context.Context) ([]store.Channel, error)
	CountReadyContent(ctx context.Context, channelID string) (int, error)
	EnqueueGeneration(ctx context.Context, channelID string, items, priority int) (bool, error)
	RecordMonitoringCheck(ctx context.Context, channelID string, next time.Time) error
}

// Scheduler is the time-triggered monitoring pass: it compares each
// active channel's ready content against its schedule requirement and
// enqueues generation work for the deficit.
type Scheduler struct {
	store         Store
	checkInterval time.Duration
}

func NewScheduler(s Store, checkInterval time.Duration) *Scheduler {
	if checkInterval <= 0 {
		checkInterval = time.Hour
	}
	return &Scheduler{store: s, checkInterval: checkInterval}
}

// Run evaluates every active channel. Channels are independent: one
// channel's failure is logged and the pass continues with the rest.
func (s *Scheduler) Run(ctx context.Context) error {
	channels, err := s.store.ActiveChannels(ctx)
	if err != nil {
		return fmt.Errorf("monitoring pass: %w", err)
	}

	slog.Info("Monitoring pass started", "channels", len(channels))

	for _, channel := range channels {
		if err := s.checkChannel(ctx, channel); err != nil {
			slog.Error("Channel check failed", "channel", channel.ID, "error", err)
		}
	}

	return nil
}

func (s *Scheduler) checkChannel(ctx context.Context, channel store.Channel) error {
	current, err := s.store.CountReadyContent(ctx, channel.ID)
	if err != nil {
		return err
	}

	required := channel.Schedule.RequiredItems()
	next := time.Now().UTC().Add(s.checkInterval)

	if current >= required {
		slog.Debug("Channel has enough content", "channel", channel.ID, "current", current, "required", required)
		return s.store.RecordMonitoringCheck(ctx, channel.ID, next)
	}

	deficit := required - current
	created, err := s.store.EnqueueGeneration(ctx, channel.ID, deficit, channel.Schedule.Priority())
	if err != nil {
		return err
	}

	if created {
		slog.Info("Generation enqueued", "channel", channel.ID, "items", deficit, "priority", channel.Schedule.Priority())
	} else {
		slog.Debug("Generation already queued", "channel", channel.ID)
	}

	return s.store.RecordMonitoringCheck(ctx, channel.ID, next)
}
