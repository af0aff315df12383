package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quotagate/quotagate/adapters/clock"
	"github.com/quotagate/quotagate/adapters/idgen"
	"github.com/quotagate/quotagate/adapters/sqlite"
	"github.com/quotagate/quotagate/app"
	"github.com/quotagate/quotagate/config"
	"github.com/quotagate/quotagate/domain/entitlement"
	"github.com/quotagate/quotagate/domain/tier"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect and reset usage",
	Long: `Inspect per-account usage counters.

Examples:
  quotagate usage show acc_123
  quotagate usage reset acc_123
  quotagate usage events acc_123 --limit=20`,
}

var usageShowCmd = &cobra.Command{
	Use:   "show <account-id-or-email>",
	Short: "Show usage stats for the current period",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsageShow,
}

var usageResetCmd = &cobra.Command{
	Use:   "reset <account-id-or-email>",
	Short: "Zero the monthly counters now",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsageReset,
}

var usageEventsCmd = &cobra.Command{
	Use:   "events <account-id-or-email>",
	Short: "Show recent usage events",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsageEvents,
}

var (
	usageEventLimit int
)

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.AddCommand(usageShowCmd)
	usageCmd.AddCommand(usageResetCmd)
	usageCmd.AddCommand(usageEventsCmd)

	usageEventsCmd.Flags().IntVar(&usageEventLimit, "limit", 20, "number of events to show")
}

func newEngine(db *sqlite.DB, catalog tier.Catalog, strict bool) *app.Engine {
	return app.NewEngine(app.EngineDeps{
		Accounts: sqlite.NewAccountStore(db),
		Clock:    clock.Real{},
		IDGen:    idgen.UUID{},
		Logger:   zerolog.Nop(),
	}, app.EngineConfig{
		Catalog: catalog,
		Strict:  strict,
	})
}

func runUsageShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	a, err := resolveAccount(ctx, db, args[0])
	if err != nil {
		return err
	}

	stats, err := newEngine(db, catalog, cfg.Enforcement.Strict).UsageStats(ctx, a.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Account %s (tier %s)\n\n", a.ID, stats.Tier)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tUSED\tLIMIT\tREMAINING")
	printStat(w, "Uploads", stats.Uploads)
	printStat(w, "Audio minutes", stats.AudioMinutes)
	printStat(w, "Contracts", stats.Contracts)
	w.Flush()

	fmt.Printf("\nExtension access:    %v\n", stats.CanUseExtension)
	fmt.Printf("Priority processing: %v\n", stats.PriorityProcessing)
	fmt.Printf("Next reset:          %s\n", stats.ResetDate.Format("2006-01-02"))
	return nil
}

func printStat(w *tabwriter.Writer, name string, s entitlement.Stat) {
	if s.Limit < 0 {
		fmt.Fprintf(w, "%s\t%.1f\tunlimited\t-\n", name, s.Used)
		return
	}
	fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\n", name, s.Used, s.Limit, s.Remaining)
}

func runUsageReset(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	a, err := resolveAccount(ctx, db, args[0])
	if err != nil {
		return err
	}

	a = entitlement.Rollover(a, clock.Real{}.Now())
	if err := sqlite.NewAccountStore(db).Save(ctx, a); err != nil {
		return fmt.Errorf("failed to reset usage: %w", err)
	}

	fmt.Printf("Reset usage counters for %s\n", a.ID)
	return nil
}

func runUsageEvents(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	a, err := resolveAccount(ctx, db, args[0])
	if err != nil {
		return err
	}

	events, err := sqlite.NewUsageLog(db).Recent(ctx, a.ID, usageEventLimit)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No usage events recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tAMOUNT")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%.1f\n", e.RecordedAt.Format("2006-01-02 15:04:05"), e.Kind, e.Amount)
	}
	return w.Flush()
}
