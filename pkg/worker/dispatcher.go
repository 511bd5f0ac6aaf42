package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/pkg/circuitbreaker"
	"github.com/ruanmelo/agenda-api/pkg/metrics"
	"github.com/ruanmelo/agenda-api/pkg/webhook"
)

type DispatcherConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Dispatcher drains the outbox and delivers events to the webhook endpoints.
// Delivery is at-least-once: an event stays locked for the duration of one
// attempt and is rescheduled with backoff on failure, so a crash between
// delivery and commit results in a redelivery, never a loss.
type Dispatcher struct {
	repo    repository.OutboxRepository
	sender  *webhook.Client
	breaker *circuitbreaker.CircuitBreaker
	config  DispatcherConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(
	repo repository.OutboxRepository,
	sender *webhook.Client,
	config DispatcherConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 5
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Minute
	}

	return &Dispatcher{
		repo:   repo,
		sender: sender,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "webhook",
			MaxFailures: config.RetryAttempts,
			Timeout:     config.RetryDelay,
		}),
		config:  config,
		logger:  logger.With().Str("component", "outbox_dispatcher").Logger(),
		metrics: m,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info().
		Int("batch_size", d.config.BatchSize).
		Dur("poll_interval", d.config.PollInterval).
		Msg("starting outbox dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("shutting down outbox dispatcher")
			return
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil {
				d.logger.Error().Err(err).Msg("failed to process outbox batch")
			}
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(d.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	tx, err := d.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	events, err := d.repo.GetPendingWithLock(ctx, tx, d.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	d.metrics.OutboxQueueSize.Set(float64(len(events)))

	for _, event := range events {
		if err := d.processEvent(ctx, tx, event); err != nil {
			d.logger.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to process event")
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outbox batch: %w", err)
	}
	return nil
}

func (d *Dispatcher) processEvent(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	err := d.deliver(ctx, event)
	if err == nil {
		d.metrics.OutboxEventsProcessed.Inc()
		d.metrics.WebhooksDelivered.WithLabelValues(event.EventType).Inc()
		return d.repo.MarkProcessedTx(ctx, tx, event.ID)
	}

	// Breaker open: the event was never attempted, leave it pending for the
	// next poll instead of burning a retry.
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil
	}

	d.metrics.WebhooksFailed.WithLabelValues(event.EventType).Inc()

	if event.RetryCount+1 >= d.config.RetryAttempts {
		d.metrics.OutboxEventsFailed.Inc()
		d.logger.Warn().
			Str("event_id", event.ID.String()).
			Int("retry_count", event.RetryCount).
			Msg("event exhausted retries, moving to dead letter")
		if dlErr := d.repo.MoveToDeadLetter(ctx, tx, event); dlErr != nil {
			return fmt.Errorf("failed to move event to dead letter: %w", dlErr)
		}
		return d.repo.MarkFailedTx(ctx, tx, event.ID, err.Error())
	}

	d.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := time.Now().Add(d.backoff(event.RetryCount))
	return d.repo.MarkRetryTx(ctx, tx, event.ID, err.Error(), retryAt)
}

// deliver posts one event through the circuit breaker. With the breaker open
// the batch fails fast and the events come back on the next poll.
func (d *Dispatcher) deliver(ctx context.Context, event *model.OutboxEvent) error {
	timer := prometheus.NewTimer(d.metrics.WebhookLatency)
	defer timer.ObserveDuration()

	return d.breaker.Execute(func() error {
		return d.send(ctx, event)
	})
}

func (d *Dispatcher) send(ctx context.Context, event *model.OutboxEvent) error {
	switch event.EventType {
	case model.EventAppointmentWebhook:
		var payload webhook.AppointmentPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal appointment payload: %w", err)
		}
		payload.IdempotencyKey = event.IdempotencyKey
		return d.sender.SendAppointment(ctx, &payload)
	case model.EventScheduledReportWebhook:
		var payload webhook.ScheduledReportPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal scheduled report payload: %w", err)
		}
		payload.IdempotencyKey = event.IdempotencyKey
		return d.sender.SendScheduledReport(ctx, &payload)
	default:
		return fmt.Errorf("unknown event type: %s", event.EventType)
	}
}

// backoff doubles the base delay per attempt, capped at 30 minutes.
func (d *Dispatcher) backoff(retryCount int) time.Duration {
	delay := d.config.RetryDelay
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= 30*time.Minute {
			return 30 * time.Minute
		}
	}
	return delay
}
