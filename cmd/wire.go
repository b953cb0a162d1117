package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bnema/memochat/internal/adapters/backend"
	"github.com/bnema/memochat/internal/adapters/store"
	"github.com/bnema/memochat/internal/application"
	"github.com/bnema/memochat/internal/config"
	"github.com/bnema/memochat/internal/locale"
	"github.com/bnema/memochat/internal/logging"
	"github.com/bnema/memochat/internal/observability"
	"github.com/bnema/memochat/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

type app struct {
	opts rootOptions

	cfg         config.Config
	logger      *zap.Logger
	catalog     locale.Catalog
	store       ports.KVStore
	storeCloser io.Closer
	backendMode string
	metrics     *observability.Metrics
	service     *application.Service
	now         func() time.Time
}

// wire builds the application from configuration. It runs once per command,
// after flags are parsed, so --config and --verbose take effect.
func (a *app) wire(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(viper.New(), a.opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log, a.opts.verbose)
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}

	catalog, err := locale.Lookup(cfg.Locale)
	if err != nil {
		return errors.Join(fmt.Errorf("wire locale: %w", err), logger.Sync())
	}

	kv, closer, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("wire store: %w", err)
	}

	model, mode, err := backend.Open(ctx, cfg.Backend, catalog)
	if err != nil {
		_ = closer.Close()
		return fmt.Errorf("wire model backend: %w", err)
	}

	metrics := observability.NewMetrics(cfg.Serve.MetricsNamespace)
	logger.Debug("app wired",
		zap.String("command", cmd.CommandPath()),
		zap.String("store", cfg.Store.Backend),
		zap.String("backend", mode),
		zap.String("locale", catalog.Tag),
	)

	a.cfg = cfg
	a.logger = logger
	a.catalog = catalog
	a.store = kv
	a.storeCloser = closer
	a.backendMode = mode
	a.metrics = metrics
	a.now = time.Now
	a.service = application.NewService(kv, model, ports.SystemClock{},
		application.WithLogger(logger),
		application.WithCatalog(catalog),
		application.WithDailyLimit(cfg.Quota.DailyLimit),
		application.WithObserver(metrics),
	)
	return nil
}

func (a *app) close() {
	if a.service != nil {
		a.service.Logout()
	}
	if a.storeCloser != nil {
		if err := a.storeCloser.Close(); err != nil && a.logger != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
		a.storeCloser = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
