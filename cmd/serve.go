package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/memochat/internal/adapters/backend"
	"github.com/bnema/memochat/internal/adapters/httpapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the model proxy server",
		Long:  "serve exposes POST /api/proxy so clients can reach the model without holding the upstream API key. /healthz and /metrics are served alongside.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			upstream, mode, err := backend.Open(ctx, app.cfg.Backend, app.catalog, backend.UpstreamOnly())
			if err != nil {
				return fmt.Errorf("open upstream: %w", err)
			}

			if addr == "" {
				addr = app.cfg.Serve.Addr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			app.logger.Info("proxy listening", zap.String("addr", ln.Addr().String()), zap.String("upstream", mode))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "listening on http://%s (upstream: %s)\n", ln.Addr(), mode)

			server := httpapi.New(upstream, mode, app.metrics, app.logger)
			return server.Run(ctx, ln, app.cfg.Serve.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: serve.addr)")
	return cmd
}
