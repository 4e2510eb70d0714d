package cmd

import (
	"fmt"
	"log/slog"

	"contentflow/internal/app"
	"contentflow/pkg/config"

	"github.com/spf13/cobra"
)

var (
	onceChannelID string
	onceItems     int
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run the full pipeline once for a single channel",
	Long: `Enqueue a generation request for one channel, drain it, and push the
created items through scene media and assembly. Useful for trying out a
channel configuration without waiting for the monitoring schedule.`,
	RunE: runOnce,
}

func init() {
	onceCmd.Flags().StringVar(&onceChannelID, "channel", "", "Channel id")
	onceCmd.Flags().IntVarP(&onceItems, "items", "n", 1, "Number of items to generate")
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	if onceChannelID == "" {
		return fmt.Errorf("--channel is required")
	}

	ctx := cmd.Context()
	service, err := app.BuildService(ctx, config.Load())
	if err != nil {
		return err
	}

	channel, err := service.Store().GetChannel(ctx, onceChannelID)
	if err != nil {
		return err
	}

	enqueued, err := service.Store().EnqueueGeneration(ctx, channel.ID, onceItems, channel.Schedule.Priority())
	if err != nil {
		return err
	}
	if !enqueued {
		slog.Info("Channel already has a pending generation, draining it", "channel", channel.ID)
	}

	items, err := service.RunGeneration(ctx)
	if err != nil {
		return err
	}

	for _, id := range items {
		if err := service.ProcessItem(ctx, id); err != nil {
			slog.Error("Item processing failed", "item", id, "error", err)
		}
	}

	slog.Info("Pipeline complete", "channel", channel.ID, "items", len(items))
	return nil
}
