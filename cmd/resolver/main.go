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
	"time"

	"github.com/UnknownOlympus/locus/internal/config"
	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/places"
	"github.com/UnknownOlympus/locus/internal/repository"
	"github.com/UnknownOlympus/locus/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// main is the entry point of the resolver daemon.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := config.NewLogger(cfg.Env)

	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// run wires the resolver and blocks until ctx is canceled.
// Every resource it opens is released before it returns.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Create a separate registry for the application metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// The backend is picked at runtime, both report to the same metrics.
	lookup, err := places.NewLookup(places.LookupConfig{
		Backend:   places.Backend(cfg.Backend),
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Language:  cfg.Language,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
		Observer:  appMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create place lookup: %w", err)
	}

	logger.InfoContext(ctx, "Place lookup initialized", "backend", cfg.Backend)

	// Initialize the database connection.
	dtb, err := repository.NewDatabase(ctx,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)

	resolver := service.NewResolverService(logger, repo, lookup, appMetrics, service.Config{
		Workers:      cfg.Workers,
		PollInterval: cfg.Interval,
		BatchSize:    cfg.BatchSize,
		MaxAttempts:  cfg.MaxAttempts,
		RateLimit:    cfg.LookupsPerSecond,
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	go startMonitoringServer(ctx, logger, reg, dtb, cfg.HealthPort)

	go resolver.Run(ctx)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	logger.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}

// pinger is the part of the database pool the health check needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It shuts the server down once ctx is canceled.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb pinger,
	port int,
) {
	readTimeout := 5 * time.Second
	writeTimeout := 10 * time.Second
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      newMonitoringHandler(ctx, log, reg, dtb),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(shutdownCtx, "Monitoring server shutdown failed", "error", err)
		}
	}()

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

func newMonitoringHandler(ctx context.Context, log *slog.Logger, reg *prometheus.Registry, dtb pinger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := dtb.Ping(req.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}
