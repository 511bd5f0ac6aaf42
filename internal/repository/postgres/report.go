package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ruanmelo/agenda-api/internal/model"
)

const scheduledReportColumns = `
	id, user_id, name, report_type, frequency, execution_time, recipients,
	format, filters, status, last_run_at, created_at, updated_at
`

func (r *reportRepository) Create(ctx context.Context, sr *model.ScheduledReport) error {
	query := `
		INSERT INTO scheduled_reports (` + scheduledReportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	sr.ID = uuid.New()
	sr.CreatedAt = time.Now()
	sr.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		sr.ID,
		sr.UserID,
		sr.Name,
		sr.ReportType,
		sr.Frequency,
		sr.ExecutionTime,
		sr.Recipients,
		sr.Format,
		sr.Filters,
		sr.Status,
		sr.LastRunAt,
		sr.CreatedAt,
		sr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduled report: %w", err)
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*model.ScheduledReport, error) {
	query := `SELECT ` + scheduledReportColumns + ` FROM scheduled_reports WHERE id = $1`

	var sr model.ScheduledReport
	if err := r.db.GetContext(ctx, &sr, query, id); err != nil {
		return nil, fmt.Errorf("failed to get scheduled report: %w", err)
	}
	return &sr, nil
}

func (r *reportRepository) Update(ctx context.Context, sr *model.ScheduledReport) error {
	query := `
		UPDATE scheduled_reports
		SET name = $1, report_type = $2, frequency = $3, execution_time = $4,
			recipients = $5, format = $6, filters = $7, status = $8, updated_at = $9
		WHERE id = $10
	`
	sr.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		sr.Name,
		sr.ReportType,
		sr.Frequency,
		sr.ExecutionTime,
		sr.Recipients,
		sr.Format,
		sr.Filters,
		sr.Status,
		sr.UpdatedAt,
		sr.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scheduled report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scheduled report not found")
	}
	return nil
}

func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scheduled report not found")
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.ScheduledReport, error) {
	query := `
		SELECT ` + scheduledReportColumns + `
		FROM scheduled_reports
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	var reports []*model.ScheduledReport
	if err := r.db.SelectContext(ctx, &reports, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list scheduled reports: %w", err)
	}
	return reports, nil
}

// ListDue returns active reports whose time of day has arrived and that have
// not fired since the current due instant. Frequency-specific due checks
// happen in the scheduler.
func (r *reportRepository) ListDue(ctx context.Context, now time.Time) ([]*model.ScheduledReport, error) {
	query := `
		SELECT ` + scheduledReportColumns + `
		FROM scheduled_reports
		WHERE status = 'active'
		AND execution_time <= $1
		AND (last_run_at IS NULL OR last_run_at < $2)
		ORDER BY execution_time ASC
	`
	timeOfDay := now.Format("15:04")
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var reports []*model.ScheduledReport
	if err := r.db.SelectContext(ctx, &reports, query, timeOfDay, startOfDay); err != nil {
		return nil, fmt.Errorf("failed to list due reports: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.ReportStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_reports SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set report status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scheduled report not found")
	}
	return nil
}

func (r *reportRepository) TouchLastRun(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_reports SET last_run_at = $1, updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to record last run: %w", err)
	}
	return nil
}

func (r *reportRepository) CreateExecution(ctx context.Context, e *model.ReportExecution) error {
	query := `
		INSERT INTO scheduled_reports_history (
			id, scheduled_report_id, executed_at, status, recipients_sent, file_url
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	e.ID = uuid.New()
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.ScheduledReportID,
		e.ExecutedAt,
		e.Status,
		e.RecipientsSent,
		e.FileURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution record: %w", err)
	}
	return nil
}

func (r *reportRepository) UpdateExecution(ctx context.Context, e *model.ReportExecution) error {
	query := `
		UPDATE scheduled_reports_history
		SET status = $1, file_url = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, e.Status, e.FileURL, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update execution record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("execution record not found")
	}
	return nil
}

func (r *reportRepository) ListExecutions(ctx context.Context, reportID uuid.UUID, limit int) ([]*model.ReportExecution, error) {
	query := `
		SELECT id, scheduled_report_id, executed_at, status, recipients_sent, file_url
		FROM scheduled_reports_history
		WHERE scheduled_report_id = $1
		ORDER BY executed_at DESC
		LIMIT $2
	`
	var executions []*model.ReportExecution
	if err := r.db.SelectContext(ctx, &executions, query, reportID, limit); err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	return executions, nil
}

func (r *reportRepository) QueryAppointments(ctx context.Context, f *model.ReportQueryFilters) ([]*model.AppointmentReportRow, error) {
	query := `
		SELECT a.id, a.date, a.time, a.status,
			   COALESCE(NULLIF(a.service, ''), '-') AS service,
			   COALESCE(CASE WHEN a.is_guest THEN a.guest_name ELSE u.name END, 'Convidado') AS client_name,
			   COALESCE(CASE WHEN a.is_guest THEN a.guest_email ELSE u.email END, '') AS client_email,
			   COALESCE(CASE WHEN a.is_guest THEN a.guest_phone ELSE u.phone END, '') AS client_phone,
			   COALESCE(p.name, 'Não atribuído') AS provider_name,
			   a.created_at
		FROM appointments a
		LEFT JOIN users u ON u.id = a.user_id
		LEFT JOIN users p ON p.id = a.provider_id
		WHERE 1=1
	`
	query, args := appendReportFilters(query, f)
	query += " ORDER BY a.date DESC, a.time ASC"

	var rows []*model.AppointmentReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query appointments report: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) QueryClients(ctx context.Context, f *model.ReportQueryFilters) ([]*model.ClientReportRow, error) {
	query := `
		SELECT COALESCE(CASE WHEN a.is_guest THEN a.guest_name ELSE u.name END, 'Desconhecido') AS client_name,
			   COALESCE(CASE WHEN a.is_guest THEN a.guest_email ELSE u.email END, '') AS client_email,
			   COALESCE(MAX(CASE WHEN a.is_guest THEN a.guest_phone ELSE u.phone END), '') AS client_phone,
			   COUNT(*) AS total_appointments,
			   COUNT(*) FILTER (WHERE a.status = 'confirmed') AS confirmed_appointments,
			   COUNT(*) FILTER (WHERE a.status = 'canceled') AS canceled_appointments,
			   MAX(a.date) AS last_appointment,
			   STRING_AGG(DISTINCT NULLIF(a.service, ''), ', ') AS services
		FROM appointments a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE 1=1
	`
	query, args := appendReportFilters(query, f)
	query += `
		GROUP BY 1, 2
		ORDER BY total_appointments DESC
	`

	var rows []*model.ClientReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query clients report: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) QuerySummary(ctx context.Context, f *model.ReportQueryFilters) (*model.ReportSummary, error) {
	query := `
		SELECT COUNT(*) AS total,
			   COUNT(*) FILTER (WHERE a.status = 'pending') AS pending,
			   COUNT(*) FILTER (WHERE a.status = 'confirmed') AS confirmed,
			   COUNT(*) FILTER (WHERE a.status = 'canceled') AS canceled
		FROM appointments a
		WHERE 1=1
	`
	query, args := appendReportFilters(query, f)

	var summary model.ReportSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query report summary: %w", err)
	}
	return &summary, nil
}

func appendReportFilters(query string, f *model.ReportQueryFilters) (string, []interface{}) {
	args := []interface{}{}
	argCount := 1

	if f.StartDate != "" {
		query += fmt.Sprintf(" AND a.date >= $%d", argCount)
		args = append(args, f.StartDate)
		argCount++
	}
	if f.EndDate != "" {
		query += fmt.Sprintf(" AND a.date <= $%d", argCount)
		args = append(args, f.EndDate)
		argCount++
	}
	if f.Status != "" && f.Status != "all" {
		query += fmt.Sprintf(" AND a.status = $%d", argCount)
		args = append(args, f.Status)
		argCount++
	}
	if f.ProviderID != nil {
		query += fmt.Sprintf(" AND a.provider_id = $%d", argCount)
		args = append(args, *f.ProviderID)
		argCount++
	}

	return query, args
}
