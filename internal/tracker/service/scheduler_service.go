package service

import (
	"context"
	"time"

	"nickel-price-tracker/internal/tracker/config"
	"nickel-price-tracker/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService triggers the pipeline once at startup and then on the
// configured cron schedule.
type SchedulerService interface {
	Start(ctx context.Context)
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(scraperSvc ScraperService, cfg *config.Config, logger *logger.Logger) SchedulerService {
	return &schedulerService{
		scraperSvc: scraperSvc,
		cfg:        cfg,
		logger:     logger,
	}
}

type schedulerService struct {
	scraperSvc ScraperService
	cfg        *config.Config
	logger     *logger.Logger
}

// Start runs an initial scrape, registers the cron entry and blocks until the
// context is canceled. Scheduled failures are logged and leave stored data
// untouched.
func (s *schedulerService) Start(ctx context.Context) {
	s.runScrape(ctx)

	c := newScrapeCron()
	_, err := c.AddFunc(s.cfg.Scraper.Schedule, func() {
		s.runScrape(ctx)
	})
	if err != nil {
		s.logger.Error("Invalid scrape schedule",
			logger.ErrorField(err),
			logger.StringField("schedule", s.cfg.Scraper.Schedule),
		)
		return
	}
	c.Start()

	<-ctx.Done()
	s.logger.Info("Scheduler service stopping")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
}

// newScrapeCron builds the cron runner. The schedule is interpreted in UTC so
// the daily run fires at the same wall-clock time regardless of where the
// process is deployed.
func newScrapeCron() *cron.Cron {
	return cron.New(cron.WithLocation(time.UTC))
}

func (s *schedulerService) runScrape(ctx context.Context) {
	count, err := s.scraperSvc.RunOnce(ctx)
	if err != nil {
		s.logger.Error("Scheduled scrape failed", logger.ErrorField(err))
		return
	}
	s.logger.Info("Scheduled scrape complete", logger.IntField("rows", count))
}
