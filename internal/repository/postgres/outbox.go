package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
)

type outboxRepository struct {
	*BaseRepository
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}

const outboxColumns = `
	id, event_type, payload, idempotency_key, status, error_message,
	retry_count, retry_at, processed_at, created_at, updated_at
`

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return r.insert(ctx, r.db, event)
}

func (r *outboxRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	return r.insert(ctx, tx, event)
}

func (r *outboxRepository) insert(ctx context.Context, ec sqlx.ExecerContext, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, idempotency_key, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	event.ID = uuid.New()
	if event.IdempotencyKey == "" {
		event.IdempotencyKey = event.ID.String()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	_, err := ec.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.IdempotencyKey,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// GetPendingWithLock claims a batch of deliverable events. SKIP LOCKED keeps
// concurrent dispatcher instances from double-claiming.
func (r *outboxRepository) GetPendingWithLock(ctx context.Context, tx *sqlx.Tx, limit int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM outbox_events
		WHERE status IN ('pending', 'retry')
		AND (retry_at IS NULL OR retry_at <= NOW())
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`
	var events []*model.OutboxEvent
	err := tx.SelectContext(ctx, &events, query, limit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return events, err
}

func (r *outboxRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

func (r *outboxRepository) MarkProcessedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `
		UPDATE outbox_events
		SET status = 'processed', error_message = NULL, processed_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, id)
	return err
}

func (r *outboxRepository) MarkRetryTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, errMsg string, retryAt time.Time) error {
	query := `
		UPDATE outbox_events
		SET status = 'retry',
			error_message = $2,
			retry_count = retry_count + 1,
			retry_at = $3,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, id, errMsg, retryAt)
	return err
}

func (r *outboxRepository) MarkFailedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE outbox_events
		SET status = 'failed', error_message = $2, updated_at = NOW()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, id, errMsg)
	return err
}

func (r *outboxRepository) MoveToDeadLetter(ctx context.Context, tx *sqlx.Tx, evt *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events_deadletter (
			event_id, event_type, payload, idempotency_key, error_message,
			retry_count, last_retry_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := tx.ExecContext(ctx, query,
		evt.ID, evt.EventType, evt.Payload, evt.IdempotencyKey,
		evt.ErrorMessage, evt.RetryCount, evt.RetryAt)
	return err
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'processed'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return result.RowsAffected()
}
