package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ruanmelo/agenda-api/internal/model"
)

const appointmentColumns = `
	id, user_id, provider_id, date, time, service, notes, phone, status,
	is_guest, guest_name, guest_email, guest_phone, client_ip,
	created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	return r.insert(ctx, r.db, apt)
}

func (r *appointmentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, apt *model.Appointment) error {
	return r.insert(ctx, tx, apt)
}

func (r *appointmentRepository) insert(ctx context.Context, ec sqlx.ExecerContext, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()

	_, err := ec.ExecContext(ctx, query,
		apt.ID,
		apt.UserID,
		apt.ProviderID,
		apt.Date,
		apt.Time,
		apt.Service,
		apt.Notes,
		apt.Phone,
		apt.Status,
		apt.IsGuest,
		apt.GuestName,
		apt.GuestEmail,
		apt.GuestPhone,
		apt.ClientIP,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

// GetDetail joins the registered client and provider display data. Guest
// bookings fall back to the inline guest contact fields.
func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	query := `
		SELECT a.id, a.user_id, a.provider_id, a.date, a.time, a.service,
			   a.notes, a.phone, a.status, a.is_guest,
			   a.guest_name, a.guest_email, a.guest_phone, a.client_ip,
			   a.created_at, a.updated_at,
			   COALESCE(CASE WHEN a.is_guest THEN a.guest_name ELSE u.name END, '') AS client_name,
			   COALESCE(CASE WHEN a.is_guest THEN a.guest_email ELSE u.email END, '') AS client_email,
			   COALESCE(CASE WHEN a.is_guest THEN a.guest_phone ELSE u.phone END, '') AS client_phone,
			   COALESCE(p.name, '') AS provider_name,
			   COALESCE(p.email, '') AS provider_email,
			   COALESCE(p.phone, '') AS provider_phone
		FROM appointments a
		LEFT JOIN users u ON u.id = a.user_id
		LEFT JOIN users p ON p.id = a.provider_id
		WHERE a.id = $1
	`
	var detail model.AppointmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment detail: %w", err)
	}
	return &detail, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET date = $1, time = $2, service = $3, notes = $4, status = $5, updated_at = $6
		WHERE id = $7
	`
	apt.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		apt.Date,
		apt.Time,
		apt.Service,
		apt.Notes,
		apt.Status,
		apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argCount)
		args = append(args, *filters.UserID)
		argCount++
	}
	if filters.ProviderID != nil {
		query += fmt.Sprintf(" AND provider_id = $%d", argCount)
		args = append(args, *filters.ProviderID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.StartDate != "" {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}
	if filters.EndDate != "" {
		query += fmt.Sprintf(" AND date <= $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY date ASC, time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDate(ctx context.Context, providerID uuid.UUID, date string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE provider_id = $1
		AND date = $2
		AND status != 'canceled'
		ORDER BY time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, date); err != nil {
		return nil, fmt.Errorf("failed to list appointments by date: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ExistsActiveAtTx(ctx context.Context, tx *sqlx.Tx, providerID uuid.UUID, date, timeStr string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE provider_id = $1
			AND date = $2
			AND time = $3
			AND status != 'canceled'
		)
	`
	var exists bool
	if err := tx.GetContext(ctx, &exists, query, providerID, date, timeStr); err != nil {
		return false, fmt.Errorf("failed to check appointment slot: %w", err)
	}
	return exists, nil
}
