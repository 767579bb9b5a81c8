package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/plaid"
	"github.com/centsible/centsible/internal/service"
	"github.com/centsible/centsible/internal/simplefin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync transactions from Plaid or SimpleFIN",
		Long: `Fetch transactions from your connected accounts and store them
in the local database. Transactions are deduplicated automatically.`,
		RunE: runSync,
	}

	cmd.Flags().String("source", "plaid", "transaction source (plaid, simplefin)")

	// Date range flags
	cmd.Flags().StringP("start-date", "s", "", "Start date for sync (format: 2006-01-02)")
	cmd.Flags().StringP("end-date", "e", "", "End date for sync (format: 2006-01-02)")
	cmd.Flags().IntP("days", "d", 30, "Number of days to sync (used if start/end dates not specified)")

	// Account filtering
	cmd.Flags().StringSlice("accounts", []string{}, "Filter by specific account IDs (comma-separated)")
	cmd.Flags().Bool("list-accounts", false, "List available accounts without syncing")

	cmd.Flags().Bool("dry-run", false, "Show what would be saved without saving")

	_ = viper.BindPFlag("sync.source", cmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("sync.start_date", cmd.Flags().Lookup("start-date"))
	_ = viper.BindPFlag("sync.end_date", cmd.Flags().Lookup("end-date"))
	_ = viper.BindPFlag("sync.days", cmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("sync.accounts", cmd.Flags().Lookup("accounts"))
	_ = viper.BindPFlag("sync.list_accounts", cmd.Flags().Lookup("list-accounts"))
	_ = viper.BindPFlag("sync.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fetcher, err := newFetcher()
	if err != nil {
		return err
	}

	if viper.GetBool("sync.list_accounts") {
		return listAccounts(ctx, fetcher)
	}

	startDate, endDate, err := parseDateRange()
	if err != nil {
		return err
	}

	slog.Info("🔄 Syncing transactions",
		"source", viper.GetString("sync.source"),
		"start", startDate.Format("2006-01-02"),
		"end", endDate.Format("2006-01-02"))

	transactions, err := fetcher.GetTransactions(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	slog.Info("Fetched transactions", "count", len(transactions))

	accountFilter := viper.GetStringSlice("sync.accounts")
	if len(accountFilter) > 0 {
		transactions = filterTransactionsByAccount(transactions, accountFilter)
		slog.Info("Filtered to specified accounts", "count", len(transactions))
	}

	if len(transactions) == 0 {
		slog.Warn("No transactions to save")
		return nil
	}

	if viper.GetBool("sync.dry_run") {
		slog.Info("🔍 Dry run mode - not saving to database", "count", len(transactions))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("✓ Sync complete", "saved", len(transactions))
	return nil
}

// newFetcher builds a transaction fetcher for the configured source.
func newFetcher() (service.TransactionFetcher, error) {
	source := viper.GetString("sync.source")
	switch source {
	case "plaid", "":
		plaidConfig := plaid.Config{
			ClientID:    viper.GetString("plaid.client_id"),
			Secret:      viper.GetString("plaid.secret"),
			Environment: viper.GetString("plaid.environment"),
			AccessToken: viper.GetString("plaid.access_token"),
		}
		if plaidConfig.Environment == "" {
			plaidConfig.Environment = "sandbox"
		}

		client, err := plaid.NewClient(plaidConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create Plaid client: %w", err)
		}
		return client, nil
	case "simplefin":
		token := viper.GetString("simplefin.token")
		if token == "" {
			return nil, common.NewUserError(
				"SimpleFIN setup token missing: set simplefin.token in your config",
				common.ErrMissingConfig)
		}

		client, err := simplefin.NewClient(token)
		if err != nil {
			return nil, fmt.Errorf("failed to create SimpleFIN client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown sync source %q (expected plaid or simplefin)", source)
	}
}

func listAccounts(ctx context.Context, fetcher service.TransactionFetcher) error {
	accounts, err := fetcher.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	if len(accounts) == 0 {
		slog.Warn("No accounts found")
		return nil
	}

	fmt.Println("Available accounts:")
	for _, account := range accounts {
		fmt.Printf("  - %s\n", account)
	}
	return nil
}

func filterTransactionsByAccount(transactions []model.Transaction, accountIDs []string) []model.Transaction {
	allowed := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		allowed[id] = true
	}

	filtered := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if allowed[txn.AccountID] {
			filtered = append(filtered, txn)
		}
	}
	return filtered
}

func parseDateRange() (time.Time, time.Time, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -viper.GetInt("sync.days"))

	if s := viper.GetString("sync.start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", s, err)
		}
		startDate = parsed
	}

	if s := viper.GetString("sync.end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", s, err)
		}
		endDate = parsed
	}

	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}

	return startDate, endDate, nil
}
