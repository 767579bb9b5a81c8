package main

import (
	"fmt"
	"log/slog"

	"github.com/centsible/centsible/internal/config"
	"github.com/centsible/centsible/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export recurring charges to Google Sheets",
		Long: `Detect recurring charges from stored transactions and write the
report to a Google Sheets spreadsheet.

Requires either a service account key (sheets.service_account_path) or
OAuth2 credentials (sheets.client_id, sheets.client_secret,
sheets.refresh_token) in the configuration.`,
		RunE: runExport,
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("invalid sheets configuration: %w", err)
	}

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
		slog.Warn("No recurring charges detected, nothing to export")
		return nil
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	slog.Info("📤 Exporting recurring charges to Google Sheets",
		"count", len(detected),
		"spreadsheet", sheetsConfig.SpreadsheetName)

	if err := writer.Write(ctx, detected); err != nil {
		return fmt.Errorf("failed to write to sheets: %w", err)
	}

	slog.Info("✅ Export complete", "merchants", len(detected))
	return nil
}
