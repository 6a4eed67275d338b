package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	transferapp "github.com/pharmanet/backend/internal/application/transfer"
)

// ExpirySweeper is the sweep operation run on every tick. Implemented by
// the transfer expiration service.
type ExpirySweeper interface {
	ExpireOverdue(ctx context.Context) (*transferapp.ExpiredRequestStats, error)
}

// ExpirySchedulerConfig holds configuration for the expiry scheduler
type ExpirySchedulerConfig struct {
	// CheckInterval is how often overdue requests are swept
	CheckInterval time.Duration

	// SweepTimeout bounds a single sweep run
	SweepTimeout time.Duration
}

// DefaultExpirySchedulerConfig returns default scheduler configuration
func DefaultExpirySchedulerConfig() ExpirySchedulerConfig {
	return ExpirySchedulerConfig{
		CheckInterval: 30 * time.Second,
		SweepTimeout:  time.Minute,
	}
}

// ExpiryScheduler periodically expires transfer requests whose approval
// window ran out and releases their stock reservations.
type ExpiryScheduler struct {
	config  ExpirySchedulerConfig
	sweeper ExpirySweeper
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewExpiryScheduler creates a new expiry scheduler
func NewExpiryScheduler(config ExpirySchedulerConfig, sweeper ExpirySweeper, logger *zap.Logger) *ExpiryScheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultExpirySchedulerConfig().CheckInterval
	}
	if config.SweepTimeout <= 0 {
		config.SweepTimeout = DefaultExpirySchedulerConfig().SweepTimeout
	}
	return &ExpiryScheduler{
		config:  config,
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start starts the background sweep loop
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Expiry scheduler started",
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop stops the sweep loop, waiting for an in-flight sweep to finish
func (s *ExpiryScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Expiry scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ExpiryScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	// Sweep once at startup so requests that expired while the server
	// was down are released promptly.
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpiryScheduler) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	stats, err := s.sweeper.ExpireOverdue(sweepCtx)
	if err != nil {
		s.logger.Error("Expiry sweep failed", zap.Error(err))
		return
	}

	if stats.TotalOverdue > 0 {
		s.logger.Info("Expiry sweep completed",
			zap.Int("total_overdue", stats.TotalOverdue),
			zap.Int("expired", stats.SuccessExpired),
			zap.Int("skipped_raced", stats.SkippedRaced),
			zap.Int("failed", stats.FailedExpiries),
		)
	}
}
