package main

import (
	"fmt"
	"log/slog"

	"github.com/centsible/centsible/internal/certs"
	"github.com/centsible/centsible/internal/config"
	"github.com/centsible/centsible/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve transactions and detected recurring charges over HTTP.

The server exposes a small JSON API:
  GET    /api/v1/transactions
  GET    /api/v1/recurring
  PUT    /api/v1/recurring/overrides
  DELETE /api/v1/recurring/overrides/{merchantKey}
  GET    /api/v1/health`,
		RunE: runServe,
	}

	cmd.Flags().StringP("addr", "a", ":8080", "address to listen on")
	cmd.Flags().Bool("tls", false, "serve over HTTPS with a locally generated certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	addr := viper.GetString("server.addr")
	srv := server.New(addr, store)

	if viper.GetBool("server.tls") {
		certDir := config.ExpandPath("$HOME/.local/share/centsible/certs")
		cert, certErr := certs.NewFileManager(certDir).GetOrCreateCertificate()
		if certErr != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", certErr)
		}
		srv.UseTLS(cert)
	}

	slog.Info("Starting HTTP server", "addr", addr)
	return srv.ListenAndServe(ctx)
}
