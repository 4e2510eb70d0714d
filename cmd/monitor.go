package cmd

import (
	"contentflow/internal/app"
	"contentflow/pkg/config"

	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run one monitoring pass over all active channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := app.BuildService(cmd.Context(), config.Load())
		if err != nil {
			return err
		}
		return service.RunMonitoring(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
