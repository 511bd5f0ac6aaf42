package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ruanmelo/agenda-api/internal/model"
)

const availabilityColumns = `
	id, provider_id, day_of_week, date, start_time, end_time, active, available,
	created_at, updated_at
`

func (r *availabilityRepository) Create(ctx context.Context, av *model.Availability) error {
	query := `
		INSERT INTO availabilities (` + availabilityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	av.ID = uuid.New()
	av.CreatedAt = time.Now()
	av.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		av.ID,
		av.ProviderID,
		av.DayOfWeek,
		av.Date,
		av.StartTime,
		av.EndTime,
		av.Active,
		av.Available,
		av.CreatedAt,
		av.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability: %w", err)
	}
	return nil
}

func (r *availabilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.Availability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availabilities WHERE id = $1`

	var av model.Availability
	if err := r.db.GetContext(ctx, &av, query, id); err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	return &av, nil
}

func (r *availabilityRepository) Update(ctx context.Context, av *model.Availability) error {
	query := `
		UPDATE availabilities
		SET start_time = $1, end_time = $2, active = $3, available = $4, updated_at = $5
		WHERE id = $6
	`
	av.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		av.StartTime,
		av.EndTime,
		av.Active,
		av.Available,
		av.UpdatedAt,
		av.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability not found")
	}
	return nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability not found")
	}
	return nil
}

func (r *availabilityRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities
		WHERE provider_id = $1
		ORDER BY day_of_week ASC NULLS LAST, date ASC NULLS LAST, start_time ASC
	`
	var avs []*model.Availability
	if err := r.db.SelectContext(ctx, &avs, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to list availabilities: %w", err)
	}
	return avs, nil
}

func (r *availabilityRepository) ListRecurring(ctx context.Context, providerID uuid.UUID, dayOfWeek int) ([]*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities
		WHERE provider_id = $1
		AND day_of_week = $2
		AND active = true
		ORDER BY start_time ASC
	`
	var avs []*model.Availability
	if err := r.db.SelectContext(ctx, &avs, query, providerID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("failed to list recurring availabilities: %w", err)
	}
	return avs, nil
}

func (r *availabilityRepository) ListDiscrete(ctx context.Context, providerID uuid.UUID, date string) ([]*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities
		WHERE provider_id = $1
		AND date = $2
		ORDER BY start_time ASC
	`
	var avs []*model.Availability
	if err := r.db.SelectContext(ctx, &avs, query, providerID, date); err != nil {
		return nil, fmt.Errorf("failed to list discrete availabilities: %w", err)
	}
	return avs, nil
}

func (r *availabilityRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE availabilities SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to toggle availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("availability not found")
	}
	return nil
}

// ClaimSlot flips the matching discrete slot to unavailable only if it is
// still available. The conditional UPDATE makes the check and the claim a
// single statement, so two concurrent bookings of the same slot cannot both
// succeed.
func (r *availabilityRepository) ClaimSlot(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, date, timeStr string) (bool, *uuid.UUID, error) {
	query := `
		UPDATE availabilities
		SET available = false, updated_at = NOW()
		WHERE provider_id = $1
		AND date = $2
		AND start_time = $3
		AND available = true
		RETURNING id
	`
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, query, providerID, date, timeStr)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to claim slot: %w", err)
	}
	return true, &id, nil
}

func (r *availabilityRepository) HasDiscreteSlot(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, date, timeStr string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM availabilities
			WHERE provider_id = $1
			AND date = $2
			AND start_time = $3
		)
	`
	var exists bool
	if err := tx.GetContext(ctx, &exists, query, providerID, date, timeStr); err != nil {
		return false, fmt.Errorf("failed to check discrete slot: %w", err)
	}
	return exists, nil
}

// LockRecurringWindow serializes concurrent bookings against the same weekly
// window: whoever holds the row lock gets to re-check booked times before
// inserting.
func (r *availabilityRepository) LockRecurringWindow(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, dayOfWeek int, timeStr string) (*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities
		WHERE provider_id = $1
		AND day_of_week = $2
		AND active = true
		AND start_time <= $3
		AND end_time > $3
		ORDER BY start_time
		LIMIT 1
		FOR UPDATE
	`
	var av model.Availability
	if err := tx.GetContext(ctx, &av, query, providerID, dayOfWeek, timeStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock recurring window: %w", err)
	}
	return &av, nil
}

// ReleaseSlot makes a discrete slot bookable again, used when the appointment
// holding it is canceled.
func (r *availabilityRepository) ReleaseSlot(ctx context.Context, providerID uuid.UUID, date, timeStr string) error {
	query := `
		UPDATE availabilities
		SET available = true, updated_at = NOW()
		WHERE provider_id = $1
		AND date = $2
		AND start_time = $3
	`
	if _, err := r.db.ExecContext(ctx, query, providerID, date, timeStr); err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}
