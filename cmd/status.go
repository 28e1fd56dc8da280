package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relay-events/relay-cli/internal/client"
	"github.com/relay-events/relay-cli/pkg/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check ingestion API health",
	Long:  "Probe the ingestion API liveness endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, _ := cmd.Flags().GetString("profile")
		ingest := client.NewIngestClient(cfg.GetIngestURL(profile), logger)

		if err := ingest.Health(cmd.Context()); err != nil {
			return fmt.Errorf("ingestion API is unhealthy: %w", err)
		}

		output.Success("Ingestion API is healthy")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
