package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/algopatterns/client/internal/auth"
	"codeberg.org/algopatterns/client/internal/config"
	"codeberg.org/algopatterns/client/internal/gateway"
	"codeberg.org/algopatterns/client/internal/session"
)

// cfg holds the loaded configuration, populated in PersistentPreRunE
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "practice",
	Short: "Track coding practice sessions against the algopatterns backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadEnvironmentVariables()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		cfg = loaded
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// builds the full client stack from the loaded configuration
func newOrchestrator() *session.Orchestrator {
	tokens := auth.NewStaticTokenSource(cfg.AuthToken)
	client := gateway.NewClient(cfg, tokens)

	return session.NewOrchestrator(client)
}
