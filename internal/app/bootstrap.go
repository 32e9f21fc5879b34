package app

import (
	"context"
	"errors"
	"log/slog"

	"gold_price/internal/api"
	"gold_price/internal/domain"
	"gold_price/internal/infra"
	"gold_price/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Logger    *slog.Logger
	Metrics   *infra.Metrics
	Hub       *api.StreamHub
	Cache     *service.PriceCache
	Scheduler *service.RefreshScheduler
	Server    *api.Server
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration and wires every component. No network I/O happens here.
func (b *Bootstrap) Initialize() error {
	// 1. Load Config
	path := infra.ConfigPath()
	cfg, err := infra.LoadConfig(path)
	if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	b.Logger = infra.NewLogger(cfg)
	slog.SetDefault(b.Logger)
	slog.Info("🚀 Bootstrapping Gold Price Backend...", slog.String("version", cfg.App.Version))
	if err != nil {
		slog.Warn("Config file not found, using defaults", slog.String("path", path))
	}

	// 3. Components
	b.Metrics = infra.NewMetrics()
	b.Hub = api.NewStreamHub(cfg.Server.AllowedOrigins, b.Metrics)
	quotes := infra.NewQuoteClientWithConfig(cfg, b.Metrics)
	b.Cache = service.NewPriceCache(quotes, b.Metrics, b.Hub.Broadcast)
	b.Scheduler = service.NewRefreshScheduler(b.Cache, cfg.RefreshInterval())
	b.Server = api.NewServer(cfg, b.Cache, b.Hub, b.Metrics, b.Logger)
	slog.Info("✅ Components ready",
		slog.String("upstream", cfg.Upstream.URL),
		slog.String("symbol", cfg.Upstream.Symbol),
	)

	return nil
}

// WarmCache performs the blocking first fetch. The service must not accept
// traffic if this fails.
func (b *Bootstrap) WarmCache(ctx context.Context) error {
	return b.Cache.Initialize(ctx)
}
