package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relay-events/relay-cli/internal/client"
	"github.com/relay-events/relay-cli/internal/credstore"
	"github.com/relay-events/relay-cli/internal/inbox"
	"github.com/relay-events/relay-cli/pkg/output"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List submitted events",
	Long:  "Fetch and display the events visible to the active ingestion credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, ok := creds.Get(credstore.RoleIngestion)
		if !ok {
			// No credential means no network access; this is a no-op,
			// not a failure.
			output.Warn("Ingestion credential not set; nothing to fetch")
			return nil
		}

		profile, _ := cmd.Flags().GetString("profile")
		ingest := client.NewIngestClient(cfg.GetIngestURL(profile), logger)
		reconciler := inbox.New(ingest, logger)

		events, err := reconciler.Refresh(cmd.Context(), token)
		if err != nil {
			if errors.Is(err, client.ErrMalformedInbox) {
				output.Warn("Inbox response was malformed; showing an empty inbox")
			} else {
				return fmt.Errorf("inbox refresh failed: %w", err)
			}
		}

		format, _ := cmd.Flags().GetString("output")
		if format == "json" {
			return output.JSON(events)
		}

		renderInboxTable(events)
		return nil
	},
}

func renderInboxTable(events []client.Event) {
	table := output.NewTable([]string{"EVENT ID", "STATUS", "TIMESTAMP", "PAYLOAD"})
	for _, event := range events {
		timestamp := "-"
		if !event.Timestamp.IsZero() {
			timestamp = event.Timestamp.Format(time.RFC3339)
		}
		table.AddRow([]string{
			event.EventID,
			string(event.Status),
			timestamp,
			output.Truncate(string(event.Payload), 48),
		})
	}
	table.Render()
	output.Info("%d event(s)", len(events))
}

func init() {
	rootCmd.AddCommand(inboxCmd)
}
