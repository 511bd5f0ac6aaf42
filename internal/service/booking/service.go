package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/ruanmelo/agenda-api/internal/email"
	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/pkg/metrics"
	"github.com/ruanmelo/agenda-api/pkg/ratelimit"
	"github.com/ruanmelo/agenda-api/pkg/webhook"
)

var (
	ErrRateLimited     = errors.New("too many booking attempts, try again later")
	ErrSlotUnavailable = errors.New("slot is no longer available")
	ErrPastDate        = errors.New("cannot book a slot in the past")
	ErrUnknownProvider = errors.New("provider not found or inactive")
)

// SlotResolver produces the bookable slots of a provider for one date.
// Implemented by the availability service.
type SlotResolver interface {
	ResolveDay(ctx context.Context, providerID uuid.UUID, date string) ([]*model.TimeSlot, error)
}

// Service handles the public, unauthenticated guest booking flow. The
// availability re-check and the slot claim run inside one transaction with
// the appointment insert and the outbox write, so two guests racing for the
// same slot cannot both win.
type Service struct {
	appointments repository.AppointmentRepository
	availability repository.AvailabilityRepository
	users        repository.UserRepository
	outbox       repository.OutboxRepository
	resolver     SlotResolver
	limiter      ratelimit.Store
	mailer       email.Service
	providers    *cache.Cache
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	availability repository.AvailabilityRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	resolver SlotResolver,
	limiter ratelimit.Store,
	mailer email.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		availability: availability,
		users:        users,
		outbox:       outbox,
		resolver:     resolver,
		limiter:      limiter,
		mailer:       mailer,
		providers:    cache.New(5*time.Minute, 10*time.Minute),
		metrics:      m,
		logger:       logger.With().Str("component", "booking_service").Logger(),
	}
}

// BookingResult is returned to the guest on success.
type BookingResult struct {
	Appointment  *model.Appointment `json:"appointment"`
	Confirmation string             `json:"confirmation"`
}

func (s *Service) Book(ctx context.Context, req *model.GuestBookingRequest, clientIP string) (*BookingResult, error) {
	allowed, err := s.limiter.Allow(ctx, clientIP)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		s.metrics.BookingsRateLimited.Inc()
		return nil, ErrRateLimited
	}

	if err := validateFuture(req.Date, req.Time); err != nil {
		return nil, err
	}

	provider, err := s.getProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		ProviderID: req.ProviderID,
		Date:       req.Date,
		Time:       req.Time,
		Service:    req.Service,
		Notes:      req.Notes,
		Status:     model.AppointmentStatusPending,
		IsGuest:    true,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		ClientIP:   clientIP,
	}
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt

	tx, err := s.outbox.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	claimed, _, err := s.availability.ClaimSlot(ctx, tx, req.ProviderID, req.Date, req.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to claim slot: %w", err)
	}
	if !claimed {
		open, rerr := s.claimRecurring(ctx, tx, req)
		if rerr != nil {
			return nil, rerr
		}
		if !open {
			s.metrics.SlotConflicts.Inc()
			return nil, ErrSlotUnavailable
		}
	}

	if err := s.appointments.CreateTx(ctx, tx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	if err := s.enqueueWebhookTx(ctx, tx, apt, provider); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	s.metrics.BookingsCreated.WithLabelValues("guest").Inc()

	// Post-commit side effects. Neither failure undoes the booking.
	if err := s.mailer.SendBookingConfirmation(ctx, apt, provider.Name); err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", apt.ID.String()).
			Msg("failed to send confirmation email")
	}
	if err := s.limiter.Record(ctx, clientIP); err != nil {
		s.logger.Error().Err(err).Str("client_ip", clientIP).Msg("failed to record booking attempt")
	}

	return &BookingResult{
		Appointment:  apt,
		Confirmation: strings.ToUpper(apt.ID.String()[:8]),
	}, nil
}

// claimRecurring handles slots that come from a weekly window instead of a
// discrete row. It runs inside the booking transaction: the FOR UPDATE lock on
// the window row serializes guests racing for the same slot, so the booked
// check below cannot miss a concurrent insert. A discrete row for the slot
// means the window was overridden for that date and the claim already lost.
func (s *Service) claimRecurring(ctx context.Context, tx *sqlx.Tx, req *model.GuestBookingRequest) (bool, error) {
	overridden, err := s.availability.HasDiscreteSlot(ctx, tx, req.ProviderID, req.Date, req.Time)
	if err != nil {
		return false, fmt.Errorf("failed to check discrete slot: %w", err)
	}
	if overridden {
		return false, nil
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return false, fmt.Errorf("invalid date: %w", err)
	}

	window, err := s.availability.LockRecurringWindow(ctx, tx, req.ProviderID, int(day.Weekday()), req.Time)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock recurring window: %w", err)
	}
	if !onSlotBoundary(window.StartTime, req.Time) {
		return false, nil
	}

	booked, err := s.appointments.ExistsActiveAtTx(ctx, tx, req.ProviderID, req.Date, req.Time)
	if err != nil {
		return false, fmt.Errorf("failed to check booked slot: %w", err)
	}
	return !booked, nil
}

// onSlotBoundary reports whether timeStr lands on one of the 30 minute marks
// the window is sliced into when offered to guests.
func onSlotBoundary(windowStart, timeStr string) bool {
	st, err := time.Parse("15:04", windowStart)
	if err != nil {
		return false
	}
	at, err := time.Parse("15:04", timeStr)
	if err != nil {
		return false
	}
	diff := at.Sub(st)
	return diff >= 0 && diff%(30*time.Minute) == 0
}

// AvailableSlots resolves the bookable slots of a provider for one date.
func (s *Service) AvailableSlots(ctx context.Context, providerID uuid.UUID, date string) ([]*model.TimeSlot, error) {
	if _, err := s.getProvider(ctx, providerID); err != nil {
		return nil, err
	}
	return s.resolver.ResolveDay(ctx, providerID, date)
}

// Provider returns the public display data of an active provider.
func (s *Service) Provider(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.getProvider(ctx, id)
}

func (s *Service) getProvider(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if cached, ok := s.providers.Get(id.String()); ok {
		return cached.(*model.User), nil
	}

	provider, err := s.users.GetProvider(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownProvider
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	if !provider.Active {
		return nil, ErrUnknownProvider
	}

	s.providers.Set(id.String(), provider, cache.DefaultExpiration)
	return provider, nil
}

func (s *Service) enqueueWebhookTx(ctx context.Context, tx *sqlx.Tx, apt *model.Appointment, provider *model.User) error {
	detail := &model.AppointmentDetail{
		Appointment:   *apt,
		ClientName:    apt.GuestName,
		ClientEmail:   apt.GuestEmail,
		ClientPhone:   apt.GuestPhone,
		ProviderName:  provider.Name,
		ProviderEmail: provider.Email,
		ProviderPhone: provider.Phone,
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
	return s.outbox.CreateTx(ctx, tx, event)
}

func validateFuture(date, timeStr string) error {
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date/time: %w", err)
	}
	if at.Before(time.Now()) {
		return ErrPastDate
	}
	return nil
}
