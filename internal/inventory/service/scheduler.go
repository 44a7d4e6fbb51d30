package service

import (
	"context"
	"time"

	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// AlertScheduler runs threshold scans on a fixed interval in the
// background. Each cycle is a fresh scan over the whole directory.
type AlertScheduler struct {
	engine    *AlertEngine
	interval  time.Duration
	threshold int64
	logger    *logger.Logger
	cancel    context.CancelFunc
}

// NewAlertScheduler creates a new alert scheduler
func NewAlertScheduler(engine *AlertEngine, interval time.Duration, threshold int64, log *logger.Logger) *AlertScheduler {
	return &AlertScheduler{
		engine:    engine,
		interval:  interval,
		threshold: threshold,
		logger:    log,
	}
}

// Start launches the scheduler goroutine. The first scan runs immediately
// rather than one interval in.
func (s *AlertScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		s.logger.Info().Dur("interval", s.interval).Msg("alert scheduler started")

		s.runScanCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("alert scheduler stopped")
				return
			case <-ticker.C:
				s.runScanCycle(ctx)
			}
		}
	}()
}

// Stop stops the scheduler goroutine
func (s *AlertScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *AlertScheduler) runScanCycle(ctx context.Context) {
	start := time.Now()

	alerts, err := s.engine.Scan(ctx, s.threshold)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled alert scan failed")
		return
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Int("alerts", len(alerts)).
		Msg("scheduled alert scan completed")
}
