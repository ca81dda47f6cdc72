// Package cmd holds the standupbot command line: the HTTP server and admin key management.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var configPath string

var rootCmd = &cobra.Command{
	Use:   "standupbot",
	Short: "Slack standup bot",
	Long: `standupbot collects daily standup answers through Slack modals, publishes team digests
and reminds members who have not submitted.

Examples:
  standupbot serve                        # Run the HTTP server
  standupbot serve --config ./prod.json   # With an explicit config file
  standupbot apikey create --name cron    # Create an admin API key`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the JSON config file (default config/config.json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apikeyCmd)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
