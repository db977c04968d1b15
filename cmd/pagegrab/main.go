package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/use-agent/pagegrab/api"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/logging"
	"github.com/use-agent/pagegrab/metrics"
	"github.com/use-agent/pagegrab/pipeline"
	"github.com/use-agent/pagegrab/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	logging.Init(cfg.Log, os.Stdout)
	slog.Info("pagegrab starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"stealth", cfg.Browser.Stealth,
	)

	// ── 3. Scraper (one browser per request, nothing launched yet) ──
	sc := scraper.New(cfg.Browser, cfg.Extract)

	// ── 4. Metrics + orchestrator ───────────────────────────────────
	var m *metrics.Metrics
	opts := []pipeline.Option{pipeline.WithLogger(slog.Default())}
	if cfg.Metrics.Enabled {
		m = metrics.New(sc.ActiveSessions)
		opts = append(opts, pipeline.WithObserver(m))
	}
	orch := pipeline.New(sc, opts...)

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(orch, cfg, m)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// In-flight requests release their own browsers when they finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err, "active_sessions", sc.ActiveSessions())
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("pagegrab stopped")
}
