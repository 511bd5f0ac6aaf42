package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
	"github.com/ruanmelo/agenda-api/pkg/webhook"
)

const historyLimit = 20

type Service struct {
	repo   repository.ReportRepository
	outbox repository.OutboxRepository
	logger zerolog.Logger
}

func NewService(repo repository.ReportRepository, outbox repository.OutboxRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		outbox: outbox,
		logger: logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateScheduledReportRequest) (*model.ScheduledReport, error) {
	r := &model.ScheduledReport{
		UserID:        userID,
		Name:          req.Name,
		ReportType:    req.ReportType,
		Frequency:     model.ReportFrequency(req.Frequency),
		ExecutionTime: req.ExecutionTime,
		Recipients:    req.Recipients,
		Format:        req.Format,
		Filters:       req.Filters,
		Status:        model.ReportStatusActive,
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create scheduled report: %w", err)
	}

	s.sync(ctx, r, "upsert")
	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ScheduledReport, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.describe(r)
	return r, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*model.ScheduledReport, error) {
	reports, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		s.describe(r)
	}
	return reports, nil
}

// describe fills the display-only schedule fields clients render alongside
// the definition.
func (s *Service) describe(r *model.ScheduledReport) {
	r.FrequencyText = FrequencyDescription(r.Frequency, r.ExecutionTime)
	r.FrequencyLabel = FormatFrequency(r.Frequency)
	next, err := CalculateNextExecution(r.Frequency, r.ExecutionTime, time.Now())
	if err != nil {
		s.logger.Warn().Err(err).Str("report_id", r.ID.String()).Msg("failed to compute next execution")
		return
	}
	r.NextExecution = &next
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateScheduledReportRequest) (*model.ScheduledReport, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled report: %w", err)
	}

	if req.Name != nil {
		r.Name = *req.Name
	}
	if req.ReportType != nil {
		r.ReportType = *req.ReportType
	}
	if req.Frequency != nil {
		r.Frequency = model.ReportFrequency(*req.Frequency)
	}
	if req.ExecutionTime != nil {
		r.ExecutionTime = *req.ExecutionTime
	}
	if req.Recipients != nil {
		r.Recipients = req.Recipients
	}
	if req.Format != nil {
		r.Format = *req.Format
	}
	if req.Filters != nil {
		r.Filters = req.Filters
	}
	if req.Status != nil {
		r.Status = model.ReportStatus(*req.Status)
	}
	r.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update scheduled report: %w", err)
	}

	s.sync(ctx, r, "upsert")
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get scheduled report: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scheduled report: %w", err)
	}

	s.sync(ctx, r, "delete")
	return nil
}

// Toggle flips a report between active and inactive.
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (*model.ScheduledReport, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled report: %w", err)
	}

	next := model.ReportStatusActive
	if r.Status == model.ReportStatusActive {
		next = model.ReportStatusInactive
	}
	if err := s.repo.SetStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("failed to toggle scheduled report: %w", err)
	}
	r.Status = next

	s.sync(ctx, r, "upsert")
	return r, nil
}

// RunNow records a pending history row and pushes a trigger_now event. The
// external system generates the file and reports completion through the
// execution callback.
func (s *Service) RunNow(ctx context.Context, id uuid.UUID) (*model.ReportExecution, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled report: %w", err)
	}

	exec := &model.ReportExecution{
		ID:                uuid.New(),
		ScheduledReportID: r.ID,
		ExecutedAt:        time.Now(),
		Status:            model.ExecutionStatusPending,
		RecipientsSent:    r.Recipients,
	}
	if err := s.repo.CreateExecution(ctx, exec); err != nil {
		return nil, fmt.Errorf("failed to create execution: %w", err)
	}

	s.sync(ctx, r, "trigger_now")
	return exec, nil
}

// CompleteExecution is the callback target: the external system reports
// whether a run was sent or failed, optionally with the generated file.
func (s *Service) CompleteExecution(ctx context.Context, executionID uuid.UUID, status model.ExecutionStatus, fileURL *string) error {
	exec := &model.ReportExecution{
		ID:      executionID,
		Status:  status,
		FileURL: fileURL,
	}
	if err := s.repo.UpdateExecution(ctx, exec); err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}
	return nil
}

func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*model.ReportExecution, error) {
	return s.repo.ListExecutions(ctx, id, historyLimit)
}

// RunDueReports fires every active report whose execution time has arrived.
// Called once a minute by the scheduler; last_run_at keeps a report from
// firing twice for the same period.
func (s *Service) RunDueReports(ctx context.Context, now time.Time) error {
	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due reports: %w", err)
	}

	for _, r := range due {
		if !dueForFrequency(r, now) {
			continue
		}

		if _, err := s.RunNow(ctx, r.ID); err != nil {
			s.logger.Error().Err(err).
				Str("report_id", r.ID.String()).
				Msg("failed to run due report")
			continue
		}
		if err := s.repo.TouchLastRun(ctx, r.ID, now); err != nil {
			s.logger.Error().Err(err).
				Str("report_id", r.ID.String()).
				Msg("failed to record report run")
		}
	}
	return nil
}

func (s *Service) QueryAppointments(ctx context.Context, f *model.ReportQueryFilters) ([]*model.AppointmentReportRow, error) {
	return s.repo.QueryAppointments(ctx, f)
}

func (s *Service) QueryClients(ctx context.Context, f *model.ReportQueryFilters) ([]*model.ClientReportRow, error) {
	return s.repo.QueryClients(ctx, f)
}

func (s *Service) QuerySummary(ctx context.Context, f *model.ReportQueryFilters) (*model.ReportSummary, error) {
	return s.repo.QuerySummary(ctx, f)
}

// sync pushes the report definition to the external automation endpoint via
// the outbox. Enqueue failures are logged; the local mutation stands.
func (s *Service) sync(ctx context.Context, r *model.ScheduledReport, action string) {
	eventID := uuid.New()
	payload := webhook.BuildScheduledReportPayload(r, action, eventID.String())
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("report_id", r.ID.String()).Msg("failed to marshal report payload")
		return
	}

	event := &model.OutboxEvent{
		ID:             eventID,
		EventType:      model.EventScheduledReportWebhook,
		Payload:        body,
		IdempotencyKey: eventID.String(),
		Status:         model.OutboxStatusPending,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("report_id", r.ID.String()).
			Str("action", action).
			Msg("failed to enqueue report sync event")
	}
}
