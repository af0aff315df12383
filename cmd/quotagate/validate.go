package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quotagate/quotagate/adapters/sqlite"
	"github.com/quotagate/quotagate/config"
	"github.com/quotagate/quotagate/domain/tier"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the quotagate configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Tier overrides name known tiers and keep limits monotonic
  - Database is writable (optional)

Examples:
  quotagate validate
  quotagate validate --config /etc/quotagate/config.yaml`,
	RunE: runValidate,
}

var (
	validateCheckDatabase bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	// Check file exists
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	// Load and validate config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	// Catalog already validated by Load; show the effective limits
	catalog, err := cfg.Catalog()
	if err != nil {
		fmt.Printf("  %s Tier catalog valid\n", crossMark)
		return err
	}
	fmt.Printf("  %s Tier catalog valid\n", checkMark)

	fmt.Printf("  %s Database: %s (%s)\n", checkMark, cfg.Database.DSN, cfg.Database.Driver)
	fmt.Printf("  %s Auth enabled: %v\n", checkMark, cfg.Auth.Enabled)
	fmt.Printf("  %s Strict enforcement: %v\n", checkMark, cfg.Enforcement.Strict)
	fmt.Printf("  %s Tier overrides: %d\n", checkMark, len(cfg.Tiers))

	for _, t := range tier.All() {
		l := catalog.Limits(t)
		fmt.Printf("      %-8s uploads=%s audio=%s contracts=%s extension=%v\n",
			t, formatLimit(float64(l.UploadsPerMonth)), formatLimit(l.AudioMinutesPerMonth),
			formatLimit(float64(l.ContractsPerMonth)), l.CanUseExtension)
	}

	// Optional: check database
	if validateCheckDatabase && cfg.Database.Driver == "sqlite" {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
		} else {
			fmt.Printf("  %s Database writable\n", checkMark)
		}
	}

	fmt.Println()
	fmt.Println("Configuration is valid.")
	return nil
}

func formatLimit(v float64) string {
	if v < 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%.0f", v)
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
