package cmd

import (
	"fmt"

	"contentflow/internal/app"
	"contentflow/pkg/config"

	"github.com/spf13/cobra"
)

var publishItemID string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload one finished content item",
	RunE: func(cmd *cobra.Command, args []string) error {
		if publishItemID == "" {
			return fmt.Errorf("--item is required")
		}
		service, err := app.BuildService(cmd.Context(), config.Load())
		if err != nil {
			return err
		}
		return service.RunPublish(cmd.Context(), publishItemID)
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishItemID, "item", "", "Content item id")
	rootCmd.AddCommand(publishCmd)
}
