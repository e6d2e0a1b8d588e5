package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/config"
	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/repository/mongodb"
	"github.com/mamadbah2/optica/internal/repository/sheets"
)

// ReportSource provides the data of the daily export.
type ReportSource interface {
	SummaryFor(ctx context.Context, ref time.Time) (models.DashboardSummary, error)
	SalesOn(ctx context.Context, ref time.Time) ([]models.Sale, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	source    ReportSource
	summaries mongodb.SummaryRepository
	sheet     sheets.Repository
	cfg       config.ReportingConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance. summaries and sheet may be nil
// when the matching storage is not configured.
func NewScheduler(cfg config.ReportingConfig, source ReportSource, summaries mongodb.SummaryRepository, sheet sheets.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Standard 5 field cron expressions, evaluated in the store timezone.
	c := cron.New(cron.WithLocation(cfg.Location()))

	return &Scheduler{
		cron:      c,
		source:    source,
		summaries: summaries,
		sheet:     sheet,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the daily export and starts the scheduler.
func (s *Scheduler) Start() error {
	if s.summaries == nil && s.sheet == nil {
		s.logger.Info("no report storage configured, daily export disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailyExport); err != nil {
		return fmt.Errorf("schedule daily export %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("timezone", s.cfg.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyExport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.ExportDay(ctx, s.now()); err != nil {
		s.logger.Error("daily export failed", zap.Error(err))
		return
	}
	s.logger.Info("daily export completed")
}

// ExportDay stores the dashboard snapshot and appends the day's sales to the sheet.
// Both targets are attempted; the errors are joined.
func (s *Scheduler) ExportDay(ctx context.Context, day time.Time) error {
	var errs []error

	if s.summaries != nil {
		summary, err := s.source.SummaryFor(ctx, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("build summary: %w", err))
		} else if err := s.summaries.SaveDailySummary(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}

	if s.sheet != nil {
		daySales, err := s.source.SalesOn(ctx, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("load day sales: %w", err))
		} else if err := s.sheet.WriteRows(ctx, sheets.SalesRange, sheets.SaleRows(daySales, s.cfg.Location())); err != nil {
			errs = append(errs, err)
		} else {
			s.logger.Info("sales exported to sheet", zap.Int("rows", len(daySales)))
		}
	}

	return errors.Join(errs...)
}
