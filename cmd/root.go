package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/relay-events/relay-cli/internal/config"
	"github.com/relay-events/relay-cli/internal/credstore"
	"github.com/relay-events/relay-cli/internal/logging"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	creds  *credstore.Store
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay event pipeline CLI",
	Long: `relay is the command-line client for the Relay event pipeline.

Submit structured events to the ingestion API, inspect their delivery
status, and triage support tickets: urgent tickets are escalated into
the event pipeline automatically.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.relay/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = logging.New(level, "text")

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.Default()
	}

	creds, err = credstore.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load credentials: %v\n", err)
		path, _ := credstore.DefaultPath()
		creds = credstore.New(path)
	}
}
