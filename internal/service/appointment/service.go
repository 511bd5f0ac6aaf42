package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/internal/service/notification"
	"github.com/ruanmelo/agenda-api/pkg/webhook"
)

var (
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
	ErrPastDate          = fmt.Errorf("appointment cannot be scheduled in the past")
)

type Service struct {
	repo     repository.AppointmentRepository
	availSvc repository.AvailabilityRepository
	outbox   repository.OutboxRepository
	notifSvc notification.Service
	logger   zerolog.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	availRepo repository.AvailabilityRepository,
	outbox repository.OutboxRepository,
	notifSvc notification.Service,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		availSvc: availRepo,
		outbox:   outbox,
		notifSvc: notifSvc,
		logger:   logger.With().Str("component", "appointment_service").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, session *model.Session, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := validateDate(req.Date, req.Time); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		ProviderID: req.ProviderID,
		Date:       req.Date,
		Time:       req.Time,
		Service:    req.Service,
		Notes:      req.Notes,
		Phone:      req.Phone,
		Status:     model.AppointmentStatusPending,
	}
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt
	if session != nil {
		userID := session.UserID
		apt.UserID = &userID
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.notify(ctx, apt, model.NotificationAppointmentCreated)
	s.enqueueWebhook(ctx, apt.ID)
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.Status == model.AppointmentStatusCanceled {
		return nil, fmt.Errorf("%w: canceled appointments cannot be edited", ErrInvalidTransition)
	}

	if req.Date != nil {
		apt.Date = *req.Date
	}
	if req.Time != nil {
		apt.Time = *req.Time
	}
	if req.Service != nil {
		apt.Service = *req.Service
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	if req.Date != nil || req.Time != nil {
		if err := validateDate(apt.Date, apt.Time); err != nil {
			return nil, err
		}
	}
	apt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.notify(ctx, apt, model.NotificationAppointmentEdited)
	s.enqueueWebhook(ctx, apt.ID)
	return apt, nil
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusConfirmed, model.NotificationAppointmentConfirmed)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.transition(ctx, id, model.AppointmentStatusCanceled, model.NotificationAppointmentCanceled)
	if err != nil {
		return nil, err
	}

	// Reopen the discrete slot, if one was claimed for this booking.
	if err := s.availSvc.ReleaseSlot(ctx, apt.ProviderID, apt.Date, apt.Time); err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", apt.ID.String()).
			Msg("failed to release slot on cancel")
	}
	return apt, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, next model.AppointmentStatus, event model.NotificationType) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if !apt.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, apt.Status, next)
	}

	apt.Status = next
	apt.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.notify(ctx, apt, event)
	s.enqueueWebhook(ctx, apt.ID)
	return apt, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// RetryWebhook re-enqueues the current state of the appointment for delivery.
// The new event gets its own idempotency key; a stale in-flight delivery for
// the same appointment is deduplicated by the receiver.
func (s *Service) RetryWebhook(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}
	return s.enqueue(ctx, id)
}

// notify writes the in-app notification for the owning registered user.
// Guest bookings have no inbox; failures are logged, never fatal.
func (s *Service) notify(ctx context.Context, apt *model.Appointment, event model.NotificationType) {
	if apt.UserID == nil {
		return
	}
	if err := s.notifSvc.NotifyAppointmentEvent(ctx, *apt.UserID, apt.ID, event); err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", apt.ID.String()).
			Str("event", string(event)).
			Msg("failed to create notification")
	}
}

func (s *Service) enqueueWebhook(ctx context.Context, id uuid.UUID) {
	if err := s.enqueue(ctx, id); err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", id.String()).
			Msg("failed to enqueue webhook event")
	}
}

func (s *Service) enqueue(ctx context.Context, id uuid.UUID) error {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load appointment detail: %w", err)
	}

	eventID := uuid.New()
	payload := webhook.BuildAppointmentPayload(detail, eventID.String())
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	event := &model.OutboxEvent{
		ID:             eventID,
		EventType:      model.EventAppointmentWebhook,
		Payload:        body,
		IdempotencyKey: eventID.String(),
		Status:         model.OutboxStatusPending,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", err)
	}
	return nil
}

func validateDate(date, timeStr string) error {
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date/time: %w", err)
	}
	if at.Before(time.Now()) {
		return ErrPastDate
	}
	return nil
}
