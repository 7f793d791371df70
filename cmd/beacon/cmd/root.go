package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "beacon",
	Short: "Beacon messaging server CLI",
	Long: `Beacon is a real-time direct-messaging server.

Available commands:
  serve    Run the HTTP and websocket server
  seed     Populate the database with demo accounts

Use "beacon [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
