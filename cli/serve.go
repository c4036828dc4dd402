// ABOUTME: serve and mcp subcommands
// ABOUTME: Runs the HTTP webhook server or the MCP server on stdio
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/whitefoxstudios/onboarding/handlers"
	"github.com/whitefoxstudios/onboarding/web"
	"go.uber.org/zap"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form webhook and user lookup endpoints over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			rec, err := a.reconciler()
			if err != nil {
				return err
			}
			dir, err := a.directory()
			if err != nil {
				return err
			}
			nonces, err := web.NewNonces(a.cfg.NonceSecret, a.cfg.NonceTTL)
			if err != nil {
				return err
			}
			if a.cfg.NonceSecret == "" {
				a.logger.Warn("no nonce secret configured, using a random one")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := web.NewServer(rec, dir, nonces, a.cfg.SiteURL, a.logger)
			if err := server.Start(ctx, addr); err != nil {
				return err
			}

			<-ctx.Done()
			a.logger.Info("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("graceful shutdown failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := a.reconciler()
			if err != nil {
				return err
			}
			dir, err := a.directory()
			if err != nil {
				return err
			}

			server := handlers.NewServer(a.version,
				handlers.NewOnboardingHandlers(rec, dir),
				handlers.NewResourceHandlers(a.submissions, a.options))

			a.logger.Info("starting MCP server on stdio")
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
