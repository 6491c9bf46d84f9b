package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler starts scraper runs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler registers supervisor runs on spec, a standard five-field cron
// expression or a descriptor such as "@daily". Runs use ctx.
func NewScheduler(ctx context.Context, spec string, supervisor *Supervisor, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := supervisor.Start(ctx); err != nil {
			level := logger.Error
			if errors.Is(err, ErrAlreadyRunning) {
				level = logger.Info
			}
			level("scheduled scraper run skipped",
				zap.String("op", "scraper.Scheduler"),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid scraper schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins triggering runs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scraper schedule active",
		zap.String("op", "scraper.Scheduler.Start"),
		zap.Time("next", s.Next()),
	)
}

// Next returns the time of the next scheduled run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop stops triggering runs and waits for a running trigger to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
