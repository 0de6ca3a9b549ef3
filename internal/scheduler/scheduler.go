// Package scheduler repeats agent runs on a fixed interval in daemon mode.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RunFunc performs one full agent pass.
type RunFunc func(ctx context.Context) error

// Scheduler triggers runs serially on one goroutine. Runs never overlap.
type Scheduler struct {
	interval time.Duration
	run      RunFunc
	logger   *zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func New(interval time.Duration, run RunFunc, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		run:      run,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start runs once immediately, then on every interval tick until the context
// ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped by context")
			return
		case <-s.stopCh:
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.run(ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduled run failed")
	}
}
