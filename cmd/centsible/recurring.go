package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/recurring"
	"github.com/centsible/centsible/internal/server"
	"github.com/centsible/centsible/internal/service"
	"github.com/spf13/cobra"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Detect and manage recurring charges",
		Long: `Detect recurring charges from stored transactions and manage
per-merchant overrides.

Without a subcommand, prints the detected recurring charges.`,
		RunE: runRecurringList,
	}

	cmd.AddCommand(recurringDismissCmd())
	cmd.AddCommand(recurringFlagCmd())
	cmd.AddCommand(recurringResetCmd())

	return cmd
}

func recurringDismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss [merchant-key]",
		Short: "Mark a merchant as not recurring",
		Long: `Force-exclude a merchant from recurring detection. The merchant key is
the normalized key shown by 'centsible recurring'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveOverride(cmd.Context(), args[0], false)
		},
	}
}

func recurringFlagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flag [merchant-key]",
		Short: "Mark a merchant as recurring",
		Long: `Force-include a merchant in recurring detection even if the detector
does not consider it recurring on its own.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveOverride(cmd.Context(), args[0], true)
		},
	}
}

func recurringResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [merchant-key]",
		Short: "Remove an override and return to automatic detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.DeleteRecurringOverride(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to remove override: %w", err)
			}

			slog.Info("✓ Override removed", "merchant_key", args[0])
			return nil
		},
	}
}

func saveOverride(ctx context.Context, merchantKey string, isRecurring bool) error {
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	override := model.RecurringOverride{
		MerchantKey: merchantKey,
		IsRecurring: isRecurring,
	}
	if err := store.UpsertRecurringOverride(ctx, override); err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}

	slog.Info("✓ Override saved",
		"merchant_key", merchantKey,
		"is_recurring", isRecurring)
	return nil
}

func runRecurringList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	detected, err := detectRecurring(ctx, store)
	if err != nil {
		return err
	}

	if len(detected) == 0 {
		fmt.Println("No recurring charges detected.")
		return nil
	}

	var totalMonthly float64
	fmt.Printf("%-30s %-10s %-10s %-12s %s\n", "MERCHANT", "FREQUENCY", "AMOUNT", "MONTHLY", "NEXT CHARGE")
	for _, rt := range detected {
		totalMonthly += rt.MonthlyAmount
		fmt.Printf("%-30.30s %-10s %-10.2f %-12.2f %s\n",
			rt.Merchant,
			rt.Frequency,
			rt.AverageAmount,
			rt.MonthlyAmount,
			rt.NextPredictedDate.Format("2006-01-02"))
	}
	fmt.Printf("\nTotal estimated monthly: %.2f (%d merchants)\n", totalMonthly, len(detected))

	return nil
}

// detectRecurring runs detection over the same window the HTTP server uses.
func detectRecurring(ctx context.Context, store service.Storage) ([]model.RecurringTransaction, error) {
	start := time.Now().Add(-server.DefaultDetectionWindow)
	transactions, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	overrides, err := store.GetRecurringOverrides(ctx)
	if err != nil {
		slog.Warn("failed to load recurring overrides, proceeding without", "error", err)
		overrides = nil
	}

	detected := recurring.Detect(transactions)
	return recurring.ApplyOverrides(detected, overrides, transactions), nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Warn("failed to close storage", "error", err)
	}
}
