package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/gpbank/internal/config"
	"github.com/mmynk/gpbank/internal/gate"
	"github.com/mmynk/gpbank/internal/ledger"
	"github.com/mmynk/gpbank/internal/metrics"
	"github.com/mmynk/gpbank/internal/middleware"
	"github.com/mmynk/gpbank/internal/server"
	"github.com/mmynk/gpbank/internal/service"
	"github.com/mmynk/gpbank/internal/storage"
	"github.com/mmynk/gpbank/internal/storage/backend"
	"github.com/mmynk/gpbank/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	state := storage.LoadOrEmpty(ctx, store)
	slog.Info("Snapshot loaded", "accounts", len(state.Balances), "loans", len(state.Loans))

	m := metrics.New(prometheus.DefaultRegisterer)
	svc := service.NewLedgerService(ledger.NewEngine(state), gate.New(m), store, m)

	mux := http.NewServeMux()
	mux.Handle("/", server.New(svc).Handler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	handler := middleware.Actor(middleware.Logging(mux))

	// h2c lets HTTP/2 clients talk to the API without TLS
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Ledger server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Graceful shutdown failed", "error", err)
	}
	if err := svc.Flush(shutdownCtx); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	slog.Info("Snapshot flushed")
	return nil
}
