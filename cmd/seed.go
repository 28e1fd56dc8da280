package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relay-events/relay-cli/internal/client"
	"github.com/relay-events/relay-cli/internal/credstore"
	"github.com/relay-events/relay-cli/internal/seeder"
	"github.com/relay-events/relay-cli/pkg/output"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate sample event payloads",
	Long:  "Generate realistic sample payloads, optionally submitting them to the ingestion API",
	Example: `  relay seed --count 5
  relay seed --type order.created --submit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		eventType, _ := cmd.Flags().GetString("type")
		doSubmit, _ := cmd.Flags().GetBool("submit")

		if count < 1 {
			return fmt.Errorf("--count must be at least 1")
		}

		var ingest *client.IngestClient
		var token string
		if doSubmit {
			var ok bool
			token, ok = creds.Get(credstore.RoleIngestion)
			if !ok {
				return fmt.Errorf("ingestion credential not set (run 'relay keys set ingestion <key>')")
			}
			profile, _ := cmd.Flags().GetString("profile")
			ingest = client.NewIngestClient(cfg.GetIngestURL(profile), logger)
		}

		for i := 0; i < count; i++ {
			seedType := eventType
			if seedType == "" {
				seedType = seeder.RandomType()
			}

			payload, err := seeder.Payload(seedType)
			if err != nil {
				return err
			}

			if !doSubmit {
				if err := output.JSON(payload); err != nil {
					return err
				}
				continue
			}

			event, err := ingest.Submit(cmd.Context(), token, payload)
			if err != nil {
				return fmt.Errorf("failed to submit %s payload: %w", seedType, err)
			}
			output.Success("Submitted %s event: %s", seedType, event.EventID)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntP("count", "n", 1, "number of payloads to generate")
	seedCmd.Flags().StringP("type", "t", "", "event type (random when omitted)")
	seedCmd.Flags().Bool("submit", false, "submit generated payloads to the ingestion API")
}
