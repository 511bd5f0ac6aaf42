package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanmelo/agenda-api/internal/model"
)

func TestCalculateNextExecution(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	// Time still ahead today: fires today regardless of frequency.
	next, err := CalculateNextExecution(model.ReportFrequencyDaily, "09:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), next)

	// Time already passed: daily advances one day.
	next, err = CalculateNextExecution(model.ReportFrequencyDaily, "07:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 7, 30, 0, 0, time.UTC), next)

	// Weekly advances seven days.
	next, err = CalculateNextExecution(model.ReportFrequencyWeekly, "07:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 17, 7, 30, 0, 0, time.UTC), next)

	// Monthly advances one month.
	next, err = CalculateNextExecution(model.ReportFrequencyMonthly, "07:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 10, 7, 30, 0, 0, time.UTC), next)

	_, err = CalculateNextExecution(model.ReportFrequencyDaily, "not-a-time", now)
	assert.Error(t, err)
}

func TestFrequencyDescription(t *testing.T) {
	assert.Equal(t, "Todos os dias às 09:00", FrequencyDescription(model.ReportFrequencyDaily, "09:00"))
	assert.Equal(t, "Toda semana às 18:30", FrequencyDescription(model.ReportFrequencyWeekly, "18:30"))
	assert.Equal(t, "Todo mês às 00:00", FrequencyDescription(model.ReportFrequencyMonthly, "00:00"))
}

func TestFormatFrequency(t *testing.T) {
	assert.Equal(t, "Diariamente", FormatFrequency(model.ReportFrequencyDaily))
	assert.Equal(t, "Semanalmente", FormatFrequency(model.ReportFrequencyWeekly))
	assert.Equal(t, "Mensalmente", FormatFrequency(model.ReportFrequencyMonthly))
}

func TestDueForFrequency(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC)

	never := &model.ScheduledReport{Frequency: model.ReportFrequencyDaily}
	assert.True(t, dueForFrequency(never, now), "report that never ran is always due")

	yesterday := now.AddDate(0, 0, -1)
	daily := &model.ScheduledReport{Frequency: model.ReportFrequencyDaily, LastRunAt: &yesterday}
	assert.True(t, dueForFrequency(daily, now))

	earlierToday := now.Add(-time.Hour)
	daily.LastRunAt = &earlierToday
	assert.False(t, dueForFrequency(daily, now), "daily report must not fire twice in one day")

	weekly := &model.ScheduledReport{Frequency: model.ReportFrequencyWeekly, LastRunAt: &yesterday}
	assert.False(t, dueForFrequency(weekly, now))

	eightDaysAgo := now.AddDate(0, 0, -8)
	weekly.LastRunAt = &eightDaysAgo
	assert.True(t, dueForFrequency(weekly, now))

	monthly := &model.ScheduledReport{Frequency: model.ReportFrequencyMonthly, LastRunAt: &eightDaysAgo}
	assert.False(t, dueForFrequency(monthly, now))

	fiveWeeksAgo := now.AddDate(0, 0, -35)
	monthly.LastRunAt = &fiveWeeksAgo
	assert.True(t, dueForFrequency(monthly, now))
}
