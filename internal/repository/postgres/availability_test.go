package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanmelo/agenda-api/internal/repository"
)

func newMockTx(t *testing.T) (*sqlx.Tx, sqlmock.Sqlmock) {
	t.Helper()

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	mock.ExpectBegin()
	tx, err := sqlx.NewDb(raw, "sqlmock").BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	return tx, mock
}

func TestClaimSlotClaimed(t *testing.T) {
	tx, mock := newMockTx(t)
	repo := &availabilityRepository{}

	providerID := uuid.New()
	slotID := uuid.New()
	mock.ExpectQuery("UPDATE availabilities").
		WithArgs(providerID, "2030-06-03", "10:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(slotID.String()))

	claimed, id, err := repo.ClaimSlot(context.Background(), tx, providerID, "2030-06-03", "10:00")
	require.NoError(t, err)
	assert.True(t, claimed)
	require.NotNil(t, id)
	assert.Equal(t, slotID, *id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimSlotAlreadyTaken(t *testing.T) {
	tx, mock := newMockTx(t)
	repo := &availabilityRepository{}

	providerID := uuid.New()
	mock.ExpectQuery("UPDATE availabilities").
		WithArgs(providerID, "2030-06-03", "10:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	claimed, id, err := repo.ClaimSlot(context.Background(), tx, providerID, "2030-06-03", "10:00")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Nil(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasDiscreteSlot(t *testing.T) {
	tx, mock := newMockTx(t)
	repo := &availabilityRepository{}

	providerID := uuid.New()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(providerID, "2030-06-03", "10:00").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasDiscreteSlot(context.Background(), tx, providerID, "2030-06-03", "10:00")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockRecurringWindow(t *testing.T) {
	tx, mock := newMockTx(t)
	repo := &availabilityRepository{}

	providerID := uuid.New()
	dayOfWeek := 1
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "provider_id", "day_of_week", "date", "start_time", "end_time",
		"active", "available", "created_at", "updated_at",
	}).AddRow(uuid.New().String(), providerID.String(), dayOfWeek, nil, "09:00", "12:00", true, true, now, now)

	mock.ExpectQuery("FOR UPDATE").
		WithArgs(providerID, dayOfWeek, "10:00").
		WillReturnRows(rows)

	window, err := repo.LockRecurringWindow(context.Background(), tx, providerID, dayOfWeek, "10:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", window.StartTime)
	assert.Equal(t, "12:00", window.EndTime)
	require.NotNil(t, window.DayOfWeek)
	assert.Equal(t, dayOfWeek, *window.DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockRecurringWindowNone(t *testing.T) {
	tx, mock := newMockTx(t)
	repo := &availabilityRepository{}

	providerID := uuid.New()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(providerID, 1, "10:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.LockRecurringWindow(context.Background(), tx, providerID, 1, "10:00")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
