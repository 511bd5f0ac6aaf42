package booking

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
	"github.com/ruanmelo/agenda-api/pkg/metrics"
	"github.com/ruanmelo/agenda-api/pkg/ratelimit"
)

// Fakes embed the interface so only the methods the path under test touches
// need bodies; anything else panics, which is the point.

type fakeUserRepo struct {
	repository.UserRepository
	provider *model.User
	err      error
}

func (f *fakeUserRepo) GetProvider(_ context.Context, _ uuid.UUID) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.provider, nil
}

type fakeLimiter struct {
	allowed  bool
	recorded int
}

func (f *fakeLimiter) Allow(_ context.Context, _ string) (bool, error) { return f.allowed, nil }
func (f *fakeLimiter) Record(_ context.Context, _ string) error {
	f.recorded++
	return nil
}

type fakeResolver struct {
	slots []*model.TimeSlot
}

func (f *fakeResolver) ResolveDay(_ context.Context, _ uuid.UUID, _ string) ([]*model.TimeSlot, error) {
	return f.slots, nil
}

var _ ratelimit.Store = (*fakeLimiter)(nil)
var _ SlotResolver = (*fakeResolver)(nil)

func newTestService(users *fakeUserRepo, limiter *fakeLimiter, resolver *fakeResolver) *Service {
	return NewService(nil, nil, users, nil, resolver, limiter, nil, metrics.NewMetrics("test_booking_"+uuid.NewString()[:8]), zerolog.Nop())
}

func futureBooking() *model.GuestBookingRequest {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	return &model.GuestBookingRequest{
		ProviderID: uuid.New(),
		Date:       tomorrow,
		Time:       "10:00",
		Service:    "Corte",
		GuestName:  "Maria",
		GuestEmail: "maria@example.com",
		GuestPhone: "+5511999990000",
	}
}

func TestBookRateLimited(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, &fakeLimiter{allowed: false}, &fakeResolver{})

	_, err := svc.Book(context.Background(), futureBooking(), "1.2.3.4")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestBookPastDate(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, &fakeLimiter{allowed: true}, &fakeResolver{})

	req := futureBooking()
	req.Date = "2020-01-01"

	_, err := svc.Book(context.Background(), req, "1.2.3.4")
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestBookInvalidDate(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, &fakeLimiter{allowed: true}, &fakeResolver{})

	req := futureBooking()
	req.Date = "01/01/2030"

	_, err := svc.Book(context.Background(), req, "1.2.3.4")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPastDate)
}

func TestBookUnknownProvider(t *testing.T) {
	users := &fakeUserRepo{err: repository.ErrNotFound}
	svc := newTestService(users, &fakeLimiter{allowed: true}, &fakeResolver{})

	_, err := svc.Book(context.Background(), futureBooking(), "1.2.3.4")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestBookInactiveProvider(t *testing.T) {
	provider := &model.User{Name: "João", Active: false}
	provider.ID = uuid.New()
	svc := newTestService(&fakeUserRepo{provider: provider}, &fakeLimiter{allowed: true}, &fakeResolver{})

	_, err := svc.Book(context.Background(), futureBooking(), "1.2.3.4")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestAvailableSlots(t *testing.T) {
	provider := &model.User{Name: "João", Active: true}
	provider.ID = uuid.New()
	resolver := &fakeResolver{slots: []*model.TimeSlot{
		{Time: "09:00", Available: true},
		{Time: "09:30", Available: false},
	}}
	svc := newTestService(&fakeUserRepo{provider: provider}, &fakeLimiter{allowed: true}, resolver)

	slots, err := svc.AvailableSlots(context.Background(), provider.ID, "2030-01-01")
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Time)
}

func TestProviderCached(t *testing.T) {
	provider := &model.User{Name: "João", Active: true}
	provider.ID = uuid.New()
	users := &fakeUserRepo{provider: provider}
	svc := newTestService(users, &fakeLimiter{allowed: true}, &fakeResolver{})

	got, err := svc.Provider(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.Equal(t, "João", got.Name)

	// Second lookup is served from cache even after the repo starts failing.
	users.err = repository.ErrNotFound
	got, err = svc.Provider(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.Equal(t, "João", got.Name)
}
