package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gold_price/internal/app"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. First fetch must succeed before serving
	if err := bootstrap.WarmCache(ctx); err != nil {
		slog.Error("❌ Failed to start server", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. Scheduled refresh
	if err := bootstrap.Scheduler.Start(ctx); err != nil {
		slog.Error("Failed to start refresh scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Scheduler.Stop()

	// 6. HTTP server (blocks until shutdown)
	slog.InfoContext(ctx, "✨ Gold Price Backend operational. Press Ctrl+C to stop the server.")
	if err := bootstrap.Server.Start(ctx); err != nil {
		slog.Error("HTTP server failed", slog.Any("error", err))
		stop()
		bootstrap.Scheduler.Stop()
		os.Exit(1)
	}

	slog.Info("👋 Shutting down gracefully...")
}
