package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relay-events/relay-cli/internal/credstore"
	"github.com/relay-events/relay-cli/pkg/output"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API credentials",
	Long:  "Manage the bearer credentials for the ingestion API and the classification service",
}

var keysSetCmd = &cobra.Command{
	Use:   "set <role> <value>",
	Short: "Set a credential",
	Long:  "Store the credential for a role (ingestion or classification), replacing any existing one",
	Example: `  relay keys set ingestion rk_live_4f9a...
  relay keys set classification sk-proj-...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := credstore.ParseRole(args[0])
		if err != nil {
			return err
		}

		if err := creds.Set(role, args[1]); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}

		output.Success("Credential for role '%s' saved", role)
		return nil
	},
}

var keysClearCmd = &cobra.Command{
	Use:   "clear <role>",
	Short: "Clear a credential",
	Long:  "Remove the stored credential for a role; operations requiring it are disabled until a new key is set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := credstore.ParseRole(args[0])
		if err != nil {
			return err
		}

		if err := creds.Clear(role); err != nil {
			return fmt.Errorf("failed to clear credential: %w", err)
		}

		output.Success("Credential for role '%s' cleared", role)
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configured credentials",
	Long:  "List credential roles and masked values",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := output.NewTable([]string{"ROLE", "CREDENTIAL", "SET"})
		for _, role := range []credstore.Role{credstore.RoleIngestion, credstore.RoleClassification} {
			value, ok := creds.Get(role)
			set := "no"
			if ok {
				set = "yes"
			}
			table.AddRow([]string{string(role), maskCredential(value), set})
		}
		table.Render()
		return nil
	},
}

// maskCredential keeps just enough of the value to recognize which key
// is loaded without exposing it.
func maskCredential(value string) string {
	if value == "" {
		return "-"
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-2:]
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysSetCmd)
	keysCmd.AddCommand(keysClearCmd)
	keysCmd.AddCommand(keysShowCmd)
}
