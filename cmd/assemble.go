package cmd

import (
	"fmt"

	"contentflow/internal/app"
	"contentflow/pkg/config"

	"github.com/spf13/cobra"
)

var assembleItemID string

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble one content item into its final video",
	RunE: func(cmd *cobra.Command, args []string) error {
		if assembleItemID == "" {
			return fmt.Errorf("--item is required")
		}
		service, err := app.BuildService(cmd.Context(), config.Load())
		if err != nil {
			return err
		}
		return service.RunAssembly(cmd.Context(), assembleItemID)
	},
}

func init() {
	assembleCmd.Flags().StringVar(&assembleItemID, "item", "", "Content item id")
	rootCmd.AddCommand(assembleCmd)
}
