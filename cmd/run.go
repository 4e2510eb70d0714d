package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"contentflow/internal/app"
	"contentflow/pkg/config"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	runInterval   time.Duration
	checkInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Cron mode: monitor channels, generate and assemble content, repeat",
	Long: `Run in continuous mode. A monitoring loop tops up the generation queue
for every active channel, and a generation loop drains the queue and
pushes each created item through scene media and assembly.`,
	RunE: runCron,
}

func init() {
	runCmd.Flags().DurationVarP(&runInterval, "interval", "i", 0, "Interval between generation passes (default from config)")
	runCmd.Flags().DurationVarP(&checkInterval, "check-interval", "c", 0, "Interval between monitoring passes (default from config)")
	rootCmd.AddCommand(runCmd)
}

func runCron(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if runInterval == 0 {
		runInterval = cfg.Worker.RunInterval
	}
	if checkInterval == 0 {
		checkInterval = cfg.Worker.CheckInterval
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	slog.Info("Starting cron mode", "run_interval", runInterval, "check_interval", checkInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return monitorLoop(ctx, service) })
	g.Go(func() error { return generateLoop(ctx, service) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("Shutting down...")
	return nil
}

func monitorLoop(ctx context.Context, service *app.Service) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		if err := service.RunMonitoring(ctx); err != nil {
			slog.Error("Monitoring pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func generateLoop(ctx context.Context, service *app.Service) error {
	ticker := time.NewTicker(runInterval)
	defer ticker.Stop()

	for {
		generatePass(ctx, service)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func generatePass(ctx context.Context, service *app.Service) {
	items, err := service.RunGeneration(ctx)
	if err != nil {
		slog.Error("Generation pass failed", "error", err)
		return
	}

	for _, id := range items {
		if ctx.Err() != nil {
			return
		}
		if err := service.ProcessItem(ctx, id); err != nil {
			slog.Error("Item processing failed", "item", id, "error", err)
		}
	}
}
