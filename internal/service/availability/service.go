package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ruanmelo/agenda-api/internal/model"
	"github.com/ruanmelo/agenda-api/internal/repository"
)

// slotInterval is the granularity recurring windows are sliced into.
const slotInterval = 30 * time.Minute

var (
	ErrInvalidWindow = errors.New("start_time must be before end_time")
	ErrInvalidShape  = errors.New("exactly one of day_of_week or date must be set")
)

type Service struct {
	repo         repository.AvailabilityRepository
	appointments repository.AppointmentRepository
}

func NewService(repo repository.AvailabilityRepository, appointments repository.AppointmentRepository) *Service {
	return &Service{repo: repo, appointments: appointments}
}

func (s *Service) Create(ctx context.Context, providerID uuid.UUID, req *model.CreateAvailabilityRequest) (*model.Availability, error) {
	if (req.DayOfWeek == nil) == (req.Date == nil) {
		return nil, ErrInvalidShape
	}

	av := &model.Availability{
		ProviderID: providerID,
		DayOfWeek:  req.DayOfWeek,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Active:     true,
		Available:  true,
	}
	av.ID = uuid.New()
	av.CreatedAt = time.Now()
	av.UpdatedAt = av.CreatedAt

	if av.IsRecurring() {
		if av.EndTime == "" {
			return nil, fmt.Errorf("recurring availability requires end_time")
		}
		if av.StartTime >= av.EndTime {
			return nil, ErrInvalidWindow
		}
	}

	if err := s.repo.Create(ctx, av); err != nil {
		return nil, fmt.Errorf("failed to create availability: %w", err)
	}
	return av, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Availability, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Availability, error) {
	return s.repo.ListByProvider(ctx, providerID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAvailabilityRequest) (*model.Availability, error) {
	av, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	if req.StartTime != nil {
		av.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		av.EndTime = *req.EndTime
	}
	if req.Active != nil {
		av.Active = *req.Active
	}
	if av.IsRecurring() && av.StartTime >= av.EndTime {
		return nil, ErrInvalidWindow
	}
	av.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, av); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}
	return av, nil
}

// Toggle flips the active flag and returns the new state.
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (*model.Availability, error) {
	av, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	if err := s.repo.SetActive(ctx, id, !av.Active); err != nil {
		return nil, fmt.Errorf("failed to toggle availability: %w", err)
	}
	av.Active = !av.Active
	return av, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	return nil
}

// ResolveDay unions the two availability shapes into the offerable slots for
// a provider on one date: active recurring windows for that weekday are
// sliced into fixed-size slots, discrete rows are laid on top (a discrete row
// for a time wins over the recurring slice), and anything already booked is
// marked unavailable.
func (s *Service) ResolveDay(ctx context.Context, providerID uuid.UUID, date string) ([]*model.TimeSlot, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	recurring, err := s.repo.ListRecurring(ctx, providerID, int(day.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring availability: %w", err)
	}
	discrete, err := s.repo.ListDiscrete(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list discrete availability: %w", err)
	}
	booked, err := s.bookedTimes(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	slots := make(map[string]*model.TimeSlot)
	for _, window := range recurring {
		for _, t := range sliceWindow(window.StartTime, window.EndTime) {
			slots[t] = &model.TimeSlot{Time: t, Available: !booked[t]}
		}
	}
	for _, row := range discrete {
		id := row.ID
		slots[row.StartTime] = &model.TimeSlot{
			Time:      row.StartTime,
			Available: row.Available && !booked[row.StartTime],
			SlotID:    &id,
		}
	}

	out := make([]*model.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (s *Service) bookedTimes(ctx context.Context, providerID uuid.UUID, date string) (map[string]bool, error) {
	appointments, err := s.appointments.ListByDate(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	booked := make(map[string]bool, len(appointments))
	for _, apt := range appointments {
		booked[apt.Time] = true
	}
	return booked, nil
}

// sliceWindow expands [start, end) into slot start times.
func sliceWindow(start, end string) []string {
	st, err := time.Parse("15:04", start)
	if err != nil {
		return nil
	}
	et, err := time.Parse("15:04", end)
	if err != nil || !st.Before(et) {
		return nil
	}

	var times []string
	for t := st; t.Before(et); t = t.Add(slotInterval) {
		times = append(times, t.Format("15:04"))
	}
	return times
}
