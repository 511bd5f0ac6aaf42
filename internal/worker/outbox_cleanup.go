package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruanmelo/agenda-api/internal/repository"
)

// OutboxCleanupWorker purges processed outbox events older than the
// retention window so the table does not grow unbounded. Dead-lettered
// and pending events are never touched.
type OutboxCleanupWorker struct {
	repo            repository.OutboxRepository
	retentionDays   int
	cleanupInterval time.Duration
	logger          zerolog.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retentionDays int, cleanupInterval time.Duration, logger zerolog.Logger) *OutboxCleanupWorker {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}
	return &OutboxCleanupWorker{
		repo:            repo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          logger.With().Str("component", "outbox_cleanup").Logger(),
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error().Err(err).Msg("outbox cleanup failed")
			}
		}
	}
}

func (w *OutboxCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete processed events: %w", err)
	}

	if rows > 0 {
		w.logger.Info().Int64("rows", rows).Time("cutoff", cutoff).Msg("purged processed outbox events")
	}
	return nil
}
