package cmd

import (
	"fmt"

	"contentflow/internal/app"
	"contentflow/pkg/config"

	"github.com/spf13/cobra"
)

var mediaItemID string

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Generate scene media for one content item",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mediaItemID == "" {
			return fmt.Errorf("--item is required")
		}
		service, err := app.BuildService(cmd.Context(), config.Load())
		if err != nil {
			return err
		}
		return service.RunSceneMedia(cmd.Context(), mediaItemID)
	},
}

func init() {
	mediaCmd.Flags().StringVar(&mediaItemID, "item", "", "Content item id")
	rootCmd.AddCommand(mediaCmd)
}
