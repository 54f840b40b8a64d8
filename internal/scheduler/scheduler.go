// Package scheduler runs the yearly class promotion on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/svpddu/studentrecords/internal/app/services"
	"github.com/svpddu/studentrecords/internal/config"
	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

// promotionTimeout bounds a single scheduled promotion run
const promotionTimeout = 5 * time.Minute

// Scheduler wraps a cron runner. A disabled Scheduler has no runner and its
// Start and Stop do nothing.
type Scheduler struct {
	cron   *cron.Cron
	admin  services.AdminService
	logger zerolog.Logger
}

// New registers the promotion job when scheduler.enabled is set
func New(cfg *config.Config, admin services.AdminService) (*Scheduler, error) {
	s := &Scheduler{
		admin:  admin,
		logger: logger.Component("scheduler"),
	}
	if !cfg.Scheduler.Enabled {
		s.logger.Info().Msg("Scheduled promotion disabled")
		return s, nil
	}

	cl := cronLogger{log: s.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(cfg.Scheduler.PromotionSpec, s.runPromotion); err != nil {
		return nil, fmt.Errorf("invalid promotion schedule %q: %w", cfg.Scheduler.PromotionSpec, err)
	}
	s.cron = c
	s.logger.Info().Str("spec", cfg.Scheduler.PromotionSpec).Msg("Scheduled promotion registered")
	return s, nil
}

// Enabled reports whether a promotion job is registered
func (s *Scheduler) Enabled() bool {
	return s.cron != nil
}

// Start runs the cron loop in the background
func (s *Scheduler) Start() {
	if s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop halts the loop and waits for a running job or ctx, whichever ends first
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("Scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("Scheduler stop timed out with a job still running")
	}
}

func (s *Scheduler) runPromotion() {
	ctx, cancel := context.WithTimeout(context.Background(), promotionTimeout)
	defer cancel()

	result, err := s.admin.Promote(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled promotion failed")
		return
	}
	s.logger.Info().
		Int64("promoted", result.Promoted).
		Int64("graduated", result.Graduated).
		Msg("Scheduled promotion finished")
}

// cronLogger routes cron's own messages into zerolog. Cron reports every wake
// and run at info, so those go to debug.
type cronLogger struct {
	log zerolog.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
