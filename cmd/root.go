package cmd

import (
	"errors"
	"fmt"
	"os"

	"billing/internal/config"
	"billing/internal/logger"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// appConfig is set by Execute; nil when the environment could not be parsed.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Billing - invoicing, analytics and checkout for a small agency",
	Long: `Billing keeps the agency's clients, projects and invoices in a local
SQLite database and turns them into the revenue, payment and client
acquisition metrics shown on the dashboard.

It can serve the JSON API used by the web front end, export analytics
reports as CSV or plain text, push them to Google Sheets, and open
Midtrans Snap checkout sessions for unpaid invoices.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with the loaded configuration.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	appConfig = cfg

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func requireConfig() (*config.Config, error) {
	if appConfig == nil {
		return nil, errors.New("configuration could not be loaded, check your .env file")
	}
	return appConfig, nil
}
