package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/relay-events/relay-cli/internal/client"
	"github.com/relay-events/relay-cli/internal/credstore"
	"github.com/relay-events/relay-cli/internal/inbox"
	"github.com/relay-events/relay-cli/pkg/output"
)

// refreshDelay is how long after a successful submission the inbox is
// refreshed so the new event becomes visible without a manual refresh.
const refreshDelay = 1500 * time.Millisecond

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an event",
	Long:  "Send a JSON event payload to the ingestion API and print the acknowledgment",
	Example: `  relay submit --json '{"event_type":"order.created","order_id":"12345","amount":99.99}'
  relay submit --file payload.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonData, _ := cmd.Flags().GetString("json")
		file, _ := cmd.Flags().GetString("file")

		if jsonData == "" && file == "" {
			return fmt.Errorf("either --json or --file is required")
		}
		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read payload file: %w", err)
			}
			jsonData = string(data)
		}

		// Validation happens before any network interaction.
		payload, err := client.ParsePayload(jsonData)
		if err != nil {
			return err
		}

		token, ok := creds.Get(credstore.RoleIngestion)
		if !ok {
			return fmt.Errorf("ingestion credential not set (run 'relay keys set ingestion <key>')")
		}

		profile, _ := cmd.Flags().GetString("profile")
		ingest := client.NewIngestClient(cfg.GetIngestURL(profile), logger)

		event, err := ingest.Submit(cmd.Context(), token, payload)
		if err != nil {
			return fmt.Errorf("submission failed: %w", err)
		}

		format, _ := cmd.Flags().GetString("output")
		if format == "json" {
			if err := output.JSON(event); err != nil {
				return err
			}
		} else {
			output.Success("Event accepted: %s (status: %s)", event.EventID, event.Status)
		}

		// Best-effort delayed refresh so the new event shows up. A
		// refresh failure is not a submission error.
		if noRefresh, _ := cmd.Flags().GetBool("no-refresh"); !noRefresh {
			reconciler := inbox.New(ingest, logger)
			<-reconciler.ScheduleRefresh(token, refreshDelay)
			if events := reconciler.Snapshot(); len(events) > 0 && format != "json" {
				renderInboxTable(events)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().String("json", "", "JSON event payload")
	submitCmd.Flags().StringP("file", "f", "", "file containing the JSON event payload")
	submitCmd.Flags().Bool("no-refresh", false, "skip the post-submit inbox refresh")
}
