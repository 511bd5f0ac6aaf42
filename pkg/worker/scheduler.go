package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ReportRunner triggers every scheduled report that is due at the given
// instant. Implemented by the report service.
type ReportRunner interface {
	RunDueReports(ctx context.Context, now time.Time) error
}

// Scheduler fires the report runner once a minute. Due detection lives in the
// service so a missed tick only delays a run, it never skips one.
type Scheduler struct {
	cron   *cron.Cron
	runner ReportRunner
	logger zerolog.Logger
}

func NewScheduler(runner ReportRunner, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logger.With().Str("component", "report_scheduler").Logger(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		now := time.Now()
		if err := s.runner.RunDueReports(ctx, now); err != nil {
			s.logger.Error().Err(err).Msg("failed to run due reports")
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info().Msg("starting report scheduler")
	s.cron.Start()

	<-ctx.Done()
	s.logger.Info().Msg("shutting down report scheduler")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}
