package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quotagate/quotagate/bootstrap"
	"github.com/quotagate/quotagate/config"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quota service",
	Long: `Start the quotagate HTTP service.

The server will:
  - Load configuration from quotagate.yaml (or --config)
  - Or load configuration from QUOTAGATE_* environment variables
  - Connect to the database and run pending migrations
  - Serve the /v1 entitlement API

Environment variables (for Docker deployments):
  QUOTAGATE_DATABASE_DSN  - Database path (default: quotagate.db)
  QUOTAGATE_SERVER_PORT   - Server port (default: 8080)
  QUOTAGATE_AUTH_KEY_HASH - bcrypt hash of the shared service key
  QUOTAGATE_LOG_LEVEL     - Log level: debug, info, warn, error

Examples:
  quotagate serve
  quotagate serve --config /etc/quotagate/config.yaml
  quotagate serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	if !hasConfigFile && !config.HasEnvConfig() {
		fmt.Println("No configuration found.")
		fmt.Println()
		fmt.Printf("Option 1: Create %s\n", cfgFile)
		fmt.Println("Option 2: Set QUOTAGATE_* environment variables")
		fmt.Println()
		fmt.Println("Example (env vars):")
		fmt.Println("  QUOTAGATE_DATABASE_DSN=quotagate.db quotagate serve")
		return nil
	}

	var app *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with a config file
		app, err = bootstrap.NewWithHotReload(cfgFile, bootstrap.Options{Version: version})
	} else {
		cfg, loadErr := config.LoadWithFallback(cfgFile)
		if loadErr != nil {
			return fmt.Errorf("error loading config: %w", loadErr)
		}

		if !hasConfigFile {
			fmt.Println("Running with environment variables (no config file)")
		}

		app, err = bootstrap.New(cfg, bootstrap.Options{Version: version})
	}

	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
