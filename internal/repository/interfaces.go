package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ruanmelo/agenda-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetProvider(ctx context.Context, id uuid.UUID) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
		ListProviders(ctx context.Context) ([]*model.User, error)
		SetActive(ctx context.Context, id uuid.UUID, active bool) error
		DeleteCascade(ctx context.Context, id uuid.UUID) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, apt *model.Appointment) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, apt *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		Update(ctx context.Context, apt *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListByDate(ctx context.Context, providerID uuid.UUID, date string) ([]*model.Appointment, error)
		// ExistsActiveAtTx reports whether a non-canceled appointment already
		// occupies the provider's slot, inside tx.
		ExistsActiveAtTx(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, date, timeStr string) (bool, error)
	}

	AvailabilityRepository interface {
		Create(ctx context.Context, av *model.Availability) error
		Get(ctx context.Context, id uuid.UUID) (*model.Availability, error)
		Update(ctx context.Context, av *model.Availability) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Availability, error)
		ListRecurring(ctx context.Context, providerID uuid.UUID, dayOfWeek int) ([]*model.Availability, error)
		ListDiscrete(ctx context.Context, providerID uuid.UUID, date string) ([]*model.Availability, error)
		SetActive(ctx context.Context, id uuid.UUID, active bool) error
		// ClaimSlot conditionally flips a discrete slot to unavailable inside tx.
		// Returns false when the slot was already taken.
		ClaimSlot(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, date, timeStr string) (bool, *uuid.UUID, error)
		// HasDiscreteSlot reports whether a discrete row exists for the time at
		// all, claimed or not, inside tx.
		HasDiscreteSlot(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, date, timeStr string) (bool, error)
		// LockRecurringWindow returns the active recurring window covering the
		// time on that weekday, locking it for the duration of tx.
		LockRecurringWindow(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, dayOfWeek int, timeStr string) (*model.Availability, error)
		ReleaseSlot(ctx context.Context, providerID uuid.UUID, date, timeStr string) error
	}

	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error)
		UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	ReportRepository interface {
		Create(ctx context.Context, r *model.ScheduledReport) error
		Get(ctx context.Context, id uuid.UUID) (*model.ScheduledReport, error)
		Update(ctx context.Context, r *model.ScheduledReport) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.ScheduledReport, error)
		ListDue(ctx context.Context, now time.Time) ([]*model.ScheduledReport, error)
		SetStatus(ctx context.Context, id uuid.UUID, status model.ReportStatus) error
		TouchLastRun(ctx context.Context, id uuid.UUID, at time.Time) error

		CreateExecution(ctx context.Context, e *model.ReportExecution) error
		UpdateExecution(ctx context.Context, e *model.ReportExecution) error
		ListExecutions(ctx context.Context, reportID uuid.UUID, limit int) ([]*model.ReportExecution, error)

		QueryAppointments(ctx context.Context, f *model.ReportQueryFilters) ([]*model.AppointmentReportRow, error)
		QueryClients(ctx context.Context, f *model.ReportQueryFilters) ([]*model.ClientReportRow, error)
		QuerySummary(ctx context.Context, f *model.ReportQueryFilters) (*model.ReportSummary, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, tx *sqlx.Tx, limit int) ([]*model.OutboxEvent, error)
		BeginTx(ctx context.Context) (*sqlx.Tx, error)
		MarkProcessedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
		MarkRetryTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, errMsg string, retryAt time.Time) error
		MarkFailedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, errMsg string) error
		MoveToDeadLetter(ctx context.Context, tx *sqlx.Tx, evt *model.OutboxEvent) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = sql.ErrNoRows
