package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
)

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	stored  *model.Appointment
	updated *model.Appointment
	created *model.Appointment
}

func (f *fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	if f.stored == nil {
		return nil, repository.ErrNotFound
	}
	cp := *f.stored
	return &cp, nil
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	f.created = apt
	return nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	f.updated = apt
	return nil
}

func (f *fakeAppointmentRepo) GetDetail(_ context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	apt := f.stored
	if f.updated != nil {
		apt = f.updated
	}
	if f.created != nil {
		apt = f.created
	}
	if apt == nil {
		return nil, repository.ErrNotFound
	}
	return &model.AppointmentDetail{Appointment: *apt, ProviderName: "João"}, nil
}

type fakeAvailabilityRepo struct {
	repository.AvailabilityRepository
	released int
}

func (f *fakeAvailabilityRepo) ReleaseSlot(_ context.Context, _ uuid.UUID, _, _ string) error {
	f.released++
	return nil
}

type fakeOutbox struct {
	repository.OutboxRepository
	events []*model.OutboxEvent
}

func (f *fakeOutbox) Create(_ context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeNotifier struct {
	events []model.NotificationType
}

func (f *fakeNotifier) NotifyAppointmentEvent(_ context.Context, _ uuid.UUID, _ uuid.UUID, event model.NotificationType) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) List(_ context.Context, _ uuid.UUID) ([]*model.Notification, error) {
	return nil, nil
}
func (f *fakeNotifier) UnreadCount(_ context.Context, _ uuid.UUID) (int, error) { return 0, nil }
func (f *fakeNotifier) MarkRead(_ context.Context, _ uuid.UUID) error           { return nil }
func (f *fakeNotifier) MarkAllRead(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeNotifier) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func storedAppointment(status model.AppointmentStatus, userID *uuid.UUID) *model.Appointment {
	apt := &model.Appointment{
		UserID:     userID,
		ProviderID: uuid.New(),
		Date:       "2030-01-07",
		Time:       "10:00",
		Service:    "Consulta",
		Status:     status,
	}
	apt.ID = uuid.New()
	return apt
}

func TestConfirmPending(t *testing.T) {
	userID := uuid.New()
	repo := &fakeAppointmentRepo{stored: storedAppointment(model.AppointmentStatusPending, &userID)}
	avail := &fakeAvailabilityRepo{}
	outbox := &fakeOutbox{}
	notifier := &fakeNotifier{}
	svc := NewService(repo, avail, outbox, notifier, zerolog.Nop())

	apt, err := svc.Confirm(context.Background(), repo.stored.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
	assert.Equal(t, model.AppointmentStatusConfirmed, repo.updated.Status)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, model.NotificationAppointmentConfirmed, notifier.events[0])

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAppointmentWebhook, outbox.events[0].EventType)
	assert.Equal(t, outbox.events[0].ID.String(), outbox.events[0].IdempotencyKey)
}

func TestConfirmCanceledFails(t *testing.T) {
	repo := &fakeAppointmentRepo{stored: storedAppointment(model.AppointmentStatusCanceled, nil)}
	svc := NewService(repo, &fakeAvailabilityRepo{}, &fakeOutbox{}, &fakeNotifier{}, zerolog.Nop())

	_, err := svc.Confirm(context.Background(), repo.stored.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, repo.updated)
}

func TestCancelReleasesSlot(t *testing.T) {
	repo := &fakeAppointmentRepo{stored: storedAppointment(model.AppointmentStatusConfirmed, nil)}
	avail := &fakeAvailabilityRepo{}
	svc := NewService(repo, avail, &fakeOutbox{}, &fakeNotifier{}, zerolog.Nop())

	apt, err := svc.Cancel(context.Background(), repo.stored.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCanceled, apt.Status)
	assert.Equal(t, 1, avail.released)
}

func TestUpdateCanceledFails(t *testing.T) {
	repo := &fakeAppointmentRepo{stored: storedAppointment(model.AppointmentStatusCanceled, nil)}
	svc := NewService(repo, &fakeAvailabilityRepo{}, &fakeOutbox{}, &fakeNotifier{}, zerolog.Nop())

	newNotes := "novo"
	_, err := svc.Update(context.Background(), repo.stored.ID, &model.UpdateAppointmentRequest{Notes: &newNotes})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreatePastDate(t *testing.T) {
	svc := NewService(&fakeAppointmentRepo{}, &fakeAvailabilityRepo{}, &fakeOutbox{}, &fakeNotifier{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), nil, &model.CreateAppointmentRequest{
		ProviderID: uuid.New(),
		Date:       "2020-01-01",
		Time:       "10:00",
		Service:    "Consulta",
	})
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestCreateSetsOwnerFromSession(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	outbox := &fakeOutbox{}
	notifier := &fakeNotifier{}
	svc := NewService(repo, &fakeAvailabilityRepo{}, outbox, notifier, zerolog.Nop())

	session := &model.Session{UserID: uuid.New()}
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	apt, err := svc.Create(context.Background(), session, &model.CreateAppointmentRequest{
		ProviderID: uuid.New(),
		Date:       tomorrow,
		Time:       "10:00",
		Service:    "Consulta",
	})
	require.NoError(t, err)
	require.NotNil(t, apt.UserID)
	assert.Equal(t, session.UserID, *apt.UserID)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Len(t, notifier.events, 1)
	assert.Len(t, outbox.events, 1)
}

func TestGuestAppointmentSkipsNotification(t *testing.T) {
	repo := &fakeAppointmentRepo{stored: storedAppointment(model.AppointmentStatusPending, nil)}
	notifier := &fakeNotifier{}
	svc := NewService(repo, &fakeAvailabilityRepo{}, &fakeOutbox{}, notifier, zerolog.Nop())

	_, err := svc.Confirm(context.Background(), repo.stored.ID)
	require.NoError(t, err)
	assert.Empty(t, notifier.events, "guest bookings have no notification inbox")
}
