package report

import (
	"fmt"
	"time"

	"github.com/ruanmelo/agenda-api/internal/model"
)

// CalculateNextExecution returns the next run instant for a schedule: the
// candidate is today at the configured time; if that has already passed, it
// advances one period (day, week or month).
func CalculateNextExecution(frequency model.ReportFrequency, executionTime string, now time.Time) (time.Time, error) {
	at, err := time.Parse("15:04", executionTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid execution time: %w", err)
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !candidate.After(now) {
		switch frequency {
		case model.ReportFrequencyWeekly:
			candidate = candidate.AddDate(0, 0, 7)
		case model.ReportFrequencyMonthly:
			candidate = candidate.AddDate(0, 1, 0)
		default:
			candidate = candidate.AddDate(0, 0, 1)
		}
	}
	return candidate, nil
}

// FrequencyDescription renders the schedule for display, e.g.
// "Todos os dias às 09:00".
func FrequencyDescription(frequency model.ReportFrequency, executionTime string) string {
	switch frequency {
	case model.ReportFrequencyWeekly:
		return fmt.Sprintf("Toda semana às %s", executionTime)
	case model.ReportFrequencyMonthly:
		return fmt.Sprintf("Todo mês às %s", executionTime)
	default:
		return fmt.Sprintf("Todos os dias às %s", executionTime)
	}
}

// FormatFrequency renders the bare frequency name.
func FormatFrequency(frequency model.ReportFrequency) string {
	switch frequency {
	case model.ReportFrequencyWeekly:
		return "Semanalmente"
	case model.ReportFrequencyMonthly:
		return "Mensalmente"
	default:
		return "Diariamente"
	}
}

// dueForFrequency reports whether a report that is past its execution time
// today should actually fire, given when it last ran.
func dueForFrequency(r *model.ScheduledReport, now time.Time) bool {
	if r.LastRunAt == nil {
		return true
	}
	switch r.Frequency {
	case model.ReportFrequencyWeekly:
		return !r.LastRunAt.AddDate(0, 0, 7).After(now)
	case model.ReportFrequencyMonthly:
		return !r.LastRunAt.AddDate(0, 1, 0).After(now)
	default:
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return r.LastRunAt.Before(startOfDay)
	}
}
