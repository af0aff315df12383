package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quotagate/quotagate/adapters/clock"
	"github.com/quotagate/quotagate/adapters/idgen"
	"github.com/quotagate/quotagate/adapters/sqlite"
	"github.com/quotagate/quotagate/app"
	"github.com/quotagate/quotagate/config"
	"github.com/quotagate/quotagate/ports"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage accounts",
	Long: `Manage quotagate accounts.

Each account mirrors one platform user and carries its tier and
monthly usage counters.

Examples:
  quotagate accounts list
  quotagate accounts create --email=dev@example.com --tier=FREE
  quotagate accounts set-tier acc_123 PREMIUM
  quotagate accounts delete acc_123`,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	RunE:  runAccountsList,
}

var accountsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	RunE:  runAccountsCreate,
}

var accountsGetCmd = &cobra.Command{
	Use:   "get <account-id-or-email>",
	Short: "Get account details",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsGet,
}

var accountsSetTierCmd = &cobra.Command{
	Use:   "set-tier <account-id> <tier>",
	Short: "Change an account's tier",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsSetTier,
}

var accountsDeleteCmd = &cobra.Command{
	Use:   "delete <account-id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsDelete,
}

var (
	accountEmail string
	accountName  string
	accountTier  string
)

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsCreateCmd)
	accountsCmd.AddCommand(accountsGetCmd)
	accountsCmd.AddCommand(accountsSetTierCmd)
	accountsCmd.AddCommand(accountsDeleteCmd)

	accountsCreateCmd.Flags().StringVar(&accountEmail, "email", "", "account email (required)")
	accountsCreateCmd.Flags().StringVar(&accountName, "name", "", "account name")
	accountsCreateCmd.Flags().StringVar(&accountTier, "tier", "FREE", "subscription tier")
	accountsCreateCmd.MarkFlagRequired("email")
}

// openDatabase opens the configured SQLite database for CLI use.
func openDatabase() (*sqlite.DB, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("management commands need the sqlite driver, got %q", cfg.Database.Driver)
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newAccountService(db *sqlite.DB) *app.AccountService {
	return app.NewAccountService(app.AccountDeps{
		Accounts: sqlite.NewAccountStore(db),
		Clock:    clock.Real{},
		IDGen:    idgen.UUID{},
		Logger:   zerolog.Nop(),
	})
}

// resolveAccount finds an account by ID, falling back to email match.
func resolveAccount(ctx context.Context, db *sqlite.DB, ref string) (ports.Account, error) {
	store := sqlite.NewAccountStore(db)

	a, err := store.Get(ctx, ref)
	if err == nil {
		return a, nil
	}

	if strings.Contains(ref, "@") {
		all, err := store.List(ctx, 1000, 0)
		if err != nil {
			return ports.Account{}, err
		}
		for _, a := range all {
			if a.Email == strings.ToLower(ref) {
				return a, nil
			}
		}
	}

	return ports.Account{}, fmt.Errorf("account not found: %s", ref)
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewAccountStore(db)
	accounts, err := store.List(context.Background(), 1000, 0)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tTIER\tUPLOADS\tAUDIO MIN\tCONTRACTS\tRESET DATE")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\t%d\t%s\n",
			a.ID, a.Email, a.Tier,
			a.MonthlyUploads, a.MonthlyAudioMinutes, a.MonthlyContracts,
			a.UsageResetDate.Format("2006-01-02"))
	}
	return w.Flush()
}

func runAccountsCreate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := newAccountService(db).Create(context.Background(), accountEmail, accountName, accountTier)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Printf("Created account %s (%s, tier %s)\n", a.ID, a.Email, a.Tier)
	return nil
}

func runAccountsGet(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := resolveAccount(context.Background(), db, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:               %s\n", a.ID)
	fmt.Printf("Email:            %s\n", a.Email)
	if a.Name != "" {
		fmt.Printf("Name:             %s\n", a.Name)
	}
	fmt.Printf("Tier:             %s\n", a.Tier)
	fmt.Printf("Uploads:          %d\n", a.MonthlyUploads)
	fmt.Printf("Audio minutes:    %.1f\n", a.MonthlyAudioMinutes)
	fmt.Printf("Contracts:        %d\n", a.MonthlyContracts)
	fmt.Printf("Usage reset date: %s\n", a.UsageResetDate.Format("2006-01-02"))
	fmt.Printf("Created:          %s\n", a.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runAccountsSetTier(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := newAccountService(db).SetTier(context.Background(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to set tier: %w", err)
	}

	fmt.Printf("Account %s is now on tier %s\n", a.ID, a.Tier)
	return nil
}

func runAccountsDelete(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := newAccountService(db).Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	fmt.Printf("Deleted account %s\n", args[0])
	return nil
}
