package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruanmelo/agenda-api/internal/config"
	"github.com/ruanmelo/agenda-api/internal/repository/postgres"
	reportService "github.com/ruanmelo/agenda-api/internal/service/report"
	internalworker "github.com/ruanmelo/agenda-api/internal/worker"
	"github.com/ruanmelo/agenda-api/pkg/logger"
	"github.com/ruanmelo/agenda-api/pkg/metrics"
	"github.com/ruanmelo/agenda-api/pkg/webhook"
	"github.com/ruanmelo/agenda-api/pkg/worker"
)

// Standalone webhook dispatcher and report scheduler, for deployments that
// split the delivery path from the API.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: os.Getenv("LOG_LEVEL")})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	m := metrics.NewMetrics("agenda_worker")
	sender := webhook.NewClient(webhook.Config{
		BaseURL: cfg.Webhook.BaseURL,
		Secret:  cfg.Webhook.Secret,
		Timeout: cfg.Webhook.Timeout,
	}, webhook.NewDeliveryLog(), appLogger)

	dispatcher := worker.NewDispatcher(outboxRepo, sender, worker.DispatcherConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, appLogger, m)

	reportSvc := reportService.NewService(reportRepo, outboxRepo, appLogger)
	scheduler := worker.NewScheduler(reportSvc, appLogger)
	cleanup := internalworker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.RetentionDays, cfg.Outbox.CleanupInterval, appLogger)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info().Msg("shutting down...")
		cancel()
	}()

	go func() {
		if err := scheduler.Start(ctx); err != nil {
			appLogger.Error().Err(err).Msg("report scheduler stopped")
		}
	}()
	go cleanup.Start(ctx)

	dispatcher.Start(ctx)
}

func setupHealthCheck(appLogger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}
