package booking

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/pkg/metrics"
)

type fakeAvailabilityRepo struct {
	repository.AvailabilityRepository
	claimed   bool
	discrete  bool
	window    *model.Availability
	windowErr error
}

func (f *fakeAvailabilityRepo) ClaimSlot(_ context.Context, _ *sqlx.Tx, _ uuid.UUID, _, _ string) (bool, *uuid.UUID, error) {
	if !f.claimed {
		return false, nil, nil
	}
	id := uuid.New()
	return true, &id, nil
}

func (f *fakeAvailabilityRepo) HasDiscreteSlot(_ context.Context, _ *sqlx.Tx, _ uuid.UUID, _, _ string) (bool, error) {
	return f.discrete, nil
}

func (f *fakeAvailabilityRepo) LockRecurringWindow(_ context.Context, _ *sqlx.Tx, _ uuid.UUID, _ int, _ string) (*model.Availability, error) {
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	return f.window, nil
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	booked  bool
	created *model.Appointment
}

func (f *fakeAppointmentRepo) CreateTx(_ context.Context, _ *sqlx.Tx, apt *model.Appointment) error {
	f.created = apt
	return nil
}

func (f *fakeAppointmentRepo) ExistsActiveAtTx(_ context.Context, _ *sqlx.Tx, _ uuid.UUID, _, _ string) (bool, error) {
	return f.booked, nil
}

type fakeOutbox struct {
	repository.OutboxRepository
	db     *sqlx.DB
	events []*model.OutboxEvent
}

func (f *fakeOutbox) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return f.db.BeginTxx(ctx, nil)
}

func (f *fakeOutbox) CreateTx(_ context.Context, _ *sqlx.Tx, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeMailer struct {
	sent int
}

func (f *fakeMailer) SendBookingConfirmation(_ context.Context, _ *model.Appointment, _ string) error {
	f.sent++
	return nil
}

func (f *fakeMailer) SendCustom(_ context.Context, _, _, _ string) error { return nil }

type claimFixture struct {
	svc          *Service
	mock         sqlmock.Sqlmock
	appointments *fakeAppointmentRepo
	availability *fakeAvailabilityRepo
	outbox       *fakeOutbox
	mailer       *fakeMailer
	provider     *model.User
}

// newClaimFixture wires a service whose transaction comes from a sqlmock
// database, so the booking path runs against a real *sqlx.Tx while the
// repositories are fakes.
func newClaimFixture(t *testing.T, availability *fakeAvailabilityRepo, appointments *fakeAppointmentRepo) *claimFixture {
	t.Helper()

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	db := sqlx.NewDb(raw, "sqlmock")

	provider := &model.User{Name: "João", Active: true}
	provider.ID = uuid.New()

	outbox := &fakeOutbox{db: db}
	mailer := &fakeMailer{}
	svc := NewService(
		appointments,
		availability,
		&fakeUserRepo{provider: provider},
		outbox,
		&fakeResolver{},
		&fakeLimiter{allowed: true},
		mailer,
		metrics.NewMetrics("test_booking_"+uuid.NewString()[:8]),
		zerolog.Nop(),
	)
	return &claimFixture{
		svc:          svc,
		mock:         mock,
		appointments: appointments,
		availability: availability,
		outbox:       outbox,
		mailer:       mailer,
		provider:     provider,
	}
}

func TestBookClaimsDiscreteSlot(t *testing.T) {
	fix := newClaimFixture(t, &fakeAvailabilityRepo{claimed: true}, &fakeAppointmentRepo{})
	fix.mock.ExpectBegin()
	fix.mock.ExpectCommit()

	req := futureBooking()
	req.ProviderID = fix.provider.ID

	result, err := fix.svc.Book(context.Background(), req, "1.2.3.4")
	require.NoError(t, err)
	require.NotNil(t, fix.appointments.created)
	assert.Equal(t, req.GuestEmail, fix.appointments.created.GuestEmail)
	assert.Len(t, result.Confirmation, 8)
	assert.Len(t, fix.outbox.events, 1)
	assert.Equal(t, 1, fix.mailer.sent)
	assert.NoError(t, fix.mock.ExpectationsWereMet())
}

func TestBookRecurringSlot(t *testing.T) {
	availability := &fakeAvailabilityRepo{
		window: &model.Availability{StartTime: "09:00", EndTime: "12:00"},
	}
	fix := newClaimFixture(t, availability, &fakeAppointmentRepo{})
	fix.mock.ExpectBegin()
	fix.mock.ExpectCommit()

	req := futureBooking()
	req.ProviderID = fix.provider.ID
	req.Time = "10:00"

	result, err := fix.svc.Book(context.Background(), req, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "10:00", fix.appointments.created.Time)
	assert.NotEmpty(t, result.Confirmation)
	assert.NoError(t, fix.mock.ExpectationsWereMet())
}

func TestBookRecurringSlotOverriddenByDiscrete(t *testing.T) {
	// A discrete row for the slot means the weekly window was overridden for
	// that date, so losing the claim is final.
	availability := &fakeAvailabilityRepo{
		discrete: true,
		window:   &model.Availability{StartTime: "09:00", EndTime: "12:00"},
	}
	fix := newClaimFixture(t, availability, &fakeAppointmentRepo{})
	fix.mock.ExpectBegin()
	fix.mock.ExpectRollback()

	req := futureBooking()
	req.ProviderID = fix.provider.ID

	_, err := fix.svc.Book(context.Background(), req, "1.2.3.4")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Nil(t, fix.appointments.created)
	assert.NoError(t, fix.mock.ExpectationsWereMet())
}

func TestBookRecurringSlotAlreadyBooked(t *testing.T) {
	availability := &fakeAvailabilityRepo{
		window: &model.Availability{StartTime: "09:00", EndTime: "12:00"},
	}
	fix := newClaimFixture(t, availability, &fakeAppointmentRepo{booked: true})
	fix.mock.ExpectBegin()
	fix.mock.ExpectRollback()

	req := futureBooking()
	req.ProviderID = fix.provider.ID
	req.Time = "10:30"

	_, err := fix.svc.Book(context.Background(), req, "1.2.3.4")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, fix.mock.ExpectationsWereMet())
}

func TestBookRecurringSlotOffBoundary(t *testing.T) {
	availability := &fakeAvailabilityRepo{
		window: &model.Availability{StartTime: "09:00", EndTime: "12:00"},
	}
	fix := newClaimFixture(t, availability, &fakeAppointmentRepo{})
	fix.mock.ExpectBegin()
	fix.mock.ExpectRollback()

	req := futureBooking()
	req.ProviderID = fix.provider.ID
	req.Time = "10:15"

	_, err := fix.svc.Book(context.Background(), req, "1.2.3.4")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, fix.mock.ExpectationsWereMet())
}

func TestBookNoRecurringWindow(t *testing.T) {
	availability := &fakeAvailabilityRepo{windowErr: repository.ErrNotFound}
	fix := newClaimFixture(t, availability, &fakeAppointmentRepo{})
	fix.mock.ExpectBegin()
	fix.mock.ExpectRollback()

	req := futureBooking()
	req.ProviderID = fix.provider.ID

	_, err := fix.svc.Book(context.Background(), req, "1.2.3.4")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, fix.mock.ExpectationsWereMet())
}

func TestOnSlotBoundary(t *testing.T) {
	assert.True(t, onSlotBoundary("09:00", "09:00"))
	assert.True(t, onSlotBoundary("09:00", "10:30"))
	assert.False(t, onSlotBoundary("09:00", "10:15"))
	assert.False(t, onSlotBoundary("09:30", "09:00"))
}
