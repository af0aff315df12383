package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quotagate",
	Short: "Usage quota and entitlement accounting for the meeting platform",
	Long: `quotagate is the sidecar service that tracks per-account monthly
consumption and answers allow/deny for billable actions.

Quick start:
  quotagate serve     # Start the service
  quotagate validate  # Validate configuration

Management:
  quotagate accounts  # Manage accounts
  quotagate usage     # Inspect and reset usage`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "quotagate.yaml", "config file path")
}
