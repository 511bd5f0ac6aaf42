package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const (
	EventAppointmentWebhook     = "appointment.webhook"
	EventScheduledReportWebhook = "scheduled_report.webhook"
)

// OutboxEvent is a durable record of an outbound side effect. Events are
// written in the same transaction scope as the mutation that caused them and
// delivered by the dispatcher with at-least-once semantics; IdempotencyKey
// lets the receiver deduplicate redeliveries.
type OutboxEvent struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	EventType      string          `db:"event_type" json:"event_type"`
	Payload        json.RawMessage `db:"payload" json:"payload"`
	IdempotencyKey string          `db:"idempotency_key" json:"idempotency_key"`
	Status         OutboxStatus    `db:"status" json:"status"`
	ErrorMessage   *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount     int             `db:"retry_count" json:"retry_count"`
	RetryAt        *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	ProcessedAt    *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
