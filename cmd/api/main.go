package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ruanmelo/agenda-api/internal/config"
	"github.com/ruanmelo/agenda-api/internal/email"
	"github.com/ruanmelo/agenda-api/internal/handler"
	appointmentHandler "github.com/ruanmelo/agenda-api/internal/handler/appointment"
	availabilityHandler "github.com/ruanmelo/agenda-api/internal/handler/availability"
	bookingHandler "github.com/ruanmelo/agenda-api/internal/handler/booking"
	notificationHandler "github.com/ruanmelo/agenda-api/internal/handler/notification"
	reportHandler "github.com/ruanmelo/agenda-api/internal/handler/report"
	userHandler "github.com/ruanmelo/agenda-api/internal/handler/user"
	"github.com/ruanmelo/agenda-api/internal/handler/webhooklog"
	"github.com/ruanmelo/agenda-api/internal/middleware"
	"github.com/ruanmelo/agenda-api/internal/repository/postgres"
	"github.com/ruanmelo/agenda-api/internal/router"
	appointmentService "github.com/ruanmelo/agenda-api/internal/service/appointment"
	availabilityService "github.com/ruanmelo/agenda-api/internal/service/availability"
	bookingService "github.com/ruanmelo/agenda-api/internal/service/booking"
	notificationService "github.com/ruanmelo/agenda-api/internal/service/notification"
	reportService "github.com/ruanmelo/agenda-api/internal/service/report"
	userService "github.com/ruanmelo/agenda-api/internal/service/user"
	internalworker "github.com/ruanmelo/agenda-api/internal/worker"
	"github.com/ruanmelo/agenda-api/pkg/auth"
	"github.com/ruanmelo/agenda-api/pkg/logger"
	"github.com/ruanmelo/agenda-api/pkg/metrics"
	"github.com/ruanmelo/agenda-api/pkg/ratelimit"
	"github.com/ruanmelo/agenda-api/pkg/security"
	"github.com/ruanmelo/agenda-api/pkg/webhook"
	"github.com/ruanmelo/agenda-api/pkg/worker"
)

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

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Booking policy limiter: redis-backed when configured, per-process otherwise.
	limiterCfg := ratelimit.Config{
		Limit:  cfg.RateLimit.BookingLimit,
		Window: cfg.RateLimit.BookingWindow,
	}
	var bookingLimiter ratelimit.Store
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("invalid redis URL")
		}
		bookingLimiter = ratelimit.NewRedisStore(redis.NewClient(opts), limiterCfg)
	} else {
		bookingLimiter = ratelimit.NewMemoryStore(limiterCfg)
	}

	m := metrics.NewMetrics("agenda_api")
	deliveryLog := webhook.NewDeliveryLog()
	sender := webhook.NewClient(webhook.Config{
		BaseURL: cfg.Webhook.BaseURL,
		Secret:  cfg.Webhook.Secret,
		Timeout: cfg.Webhook.Timeout,
	}, deliveryLog, appLogger)
	mailer := email.NewService(cfg.SMTP, appLogger)

	// Services
	notifSvc := notificationService.NewService(notificationRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, availabilityRepo, outboxRepo, notifSvc, appLogger)
	availabilitySvc := availabilityService.NewService(availabilityRepo, appointmentRepo)
	bookingSvc := bookingService.NewService(
		appointmentRepo, availabilityRepo, userRepo, outboxRepo,
		availabilitySvc, bookingLimiter, mailer, m, appLogger,
	)
	reportSvc := reportService.NewService(reportRepo, outboxRepo, appLogger)
	userSvc := userService.NewService(userRepo, security.NewBcryptHasher(0))

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.New(
		authMiddleware,
		handler.NewHandler(db),
		bookingHandler.NewHandler(bookingSvc),
		[]router.Handler{
			appointmentHandler.NewHandler(appointmentSvc),
			availabilityHandler.NewHandler(availabilitySvc),
			notificationHandler.NewHandler(notifSvc),
			reportHandler.NewHandler(reportSvc),
		},
		[]router.Handler{
			userHandler.NewHandler(userSvc),
			webhooklog.NewHandler(deliveryLog),
		},
		m,
		appLogger,
		router.Config{
			RateLimit: rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst: cfg.RateLimit.Burst,
			CORS:      middleware.DefaultCORSConfig(),
			Timeout:   30 * time.Second,
		},
	)
	r.Setup()

	// The dispatcher and scheduler run in-process so the delivery log behind
	// /webhooks/logs reflects actual deliveries. cmd/worker runs them
	// standalone for split deployments.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := worker.NewDispatcher(outboxRepo, sender, worker.DispatcherConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, appLogger, m)
	go dispatcher.Start(ctx)

	scheduler := worker.NewScheduler(reportSvc, appLogger)
	go func() {
		if err := scheduler.Start(ctx); err != nil {
			appLogger.Error().Err(err).Msg("report scheduler stopped")
		}
	}()

	cleanup := internalworker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.RetentionDays, cfg.Outbox.CleanupInterval, appLogger)
	go cleanup.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited properly")
}
