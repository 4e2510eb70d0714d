package cmd

import (
	"log/slog"

	"contentflow/internal/app"
	"contentflow/pkg/config"

	"github.com/spf13/cobra"
)

var generateProcess bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Drain one batch of the generation queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		service, err := app.BuildService(ctx, config.Load())
		if err != nil {
			return err
		}

		items, err := service.RunGeneration(ctx)
		if err != nil {
			return err
		}
		slog.Info("Generation pass complete", "items", len(items))

		if !generateProcess {
			return nil
		}
		for _, id := range items {
			if err := service.ProcessItem(ctx, id); err != nil {
				slog.Error("Item processing failed", "item", id, "error", err)
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVarP(&generateProcess, "process", "p", false, "Also run scene media and assembly for created items")
	rootCmd.AddCommand(generateCmd)
}
