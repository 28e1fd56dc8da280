package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relay-events/relay-cli/internal/client"
	"github.com/relay-events/relay-cli/internal/credstore"
	"github.com/relay-events/relay-cli/internal/triage"
	"github.com/relay-events/relay-cli/pkg/output"
)

var triageCmd = &cobra.Command{
	Use:   "triage <ticket text>",
	Short: "Triage a support ticket",
	Long: `Assess ticket text with the classification service. An urgent verdict
escalates the ticket into the event pipeline as a derived urgent-ticket
event; a non-urgent verdict makes no submission.`,
	Example: `  relay triage "Production database is down, all customers affected"
  relay triage --assess-only "Typo in footer copyright year"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		classifyToken, ok := creds.Get(credstore.RoleClassification)
		if !ok {
			return fmt.Errorf("classification credential not set (run 'relay keys set classification <key>')")
		}

		profile, _ := cmd.Flags().GetString("profile")
		classifier := client.NewClassifyClient(cfg.GetClassifyURL(profile), cfg.GetModel(profile), logger)

		format, _ := cmd.Flags().GetString("output")

		if assessOnly, _ := cmd.Flags().GetBool("assess-only"); assessOnly {
			verdict, err := classifier.Assess(cmd.Context(), classifyToken, text)
			if err != nil {
				return fmt.Errorf("assessment failed: %w", err)
			}
			if format == "json" {
				return output.JSON(verdict)
			}
			printVerdict(verdict)
			return nil
		}

		// The ingestion credential may legitimately be absent: a
		// non-urgent verdict never needs it, and an urgent one surfaces
		// the missing credential as an escalation failure.
		ingestToken, _ := creds.Get(credstore.RoleIngestion)
		submitter := client.NewIngestClient(cfg.GetIngestURL(profile), logger)
		engine := triage.New(classifier, submitter, logger)

		result, err := engine.Run(cmd.Context(), text, classifyToken, ingestToken)

		if format == "json" {
			if jsonErr := output.JSON(result); jsonErr != nil {
				return jsonErr
			}
			return err
		}

		if result.Verdict != nil {
			printVerdict(result.Verdict)
		}

		switch result.State {
		case triage.StateEscalated:
			output.Success("Escalated as event %s", result.Event.EventID)
			return nil
		case triage.StateNotUrgent:
			output.Info("No escalation needed")
			return nil
		case triage.StateEscalationFailed:
			return fmt.Errorf("assessment succeeded but escalation failed: %w", err)
		default:
			return fmt.Errorf("assessment failed: %w", err)
		}
	},
}

func printVerdict(verdict *client.Verdict) {
	if verdict.IsUrgent {
		output.Warn("URGENT: %s", verdict.UrgencyReason)
	} else {
		output.Info("Not urgent: %s", verdict.UrgencyReason)
	}
}

func init() {
	rootCmd.AddCommand(triageCmd)

	triageCmd.Flags().Bool("assess-only", false, "assess urgency without escalating")
}
