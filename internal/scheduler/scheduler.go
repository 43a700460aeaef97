package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ipmon/internal/state"
	"ipmon/internal/types"

	"go.uber.org/zap"
)

// Checker runs a single change detection cycle
type Checker interface {
	Check(ctx context.Context) *types.IPChange
}

// Scheduler drives the checker on a single loop whose interval is re-read
// from the poll state before every wait, so changes apply on the next cycle.
type Scheduler struct {
	checker Checker
	state   *state.PollState
	logger  *zap.Logger

	checkMu sync.Mutex // at most one check in flight
	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	wait func(ctx context.Context, d time.Duration) bool
}

// New creates a scheduler
func New(checker Checker, st *state.PollState, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		checker: checker,
		state:   st,
		logger:  logger,
		wait:    sleep,
	}
}

// Start launches the loop. It waits for ready to close before the first
// check and runs until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context, ready <-chan struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("scheduler already started")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx, ready)

	return nil
}

// Stop clears the running flag, cancels the loop and waits for it to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.state.SetRunning(false)

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop timed out: %w", ctx.Err())
	}
}

// RunOnce performs one check, serialized with the loop
func (s *Scheduler) RunOnce(ctx context.Context) *types.IPChange {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()

	start := time.Now()
	change := s.checker.Check(ctx)
	s.logger.Debug("IP check completed", zap.Duration("duration", time.Since(start)))
	return change
}

func (s *Scheduler) run(ctx context.Context, ready <-chan struct{}) {
	defer s.wg.Done()

	select {
	case <-ready:
	case <-ctx.Done():
		return
	}

	s.logger.Info("Scheduler started", zap.Int("interval_seconds", s.state.Interval()))

	for s.state.Running() {
		s.RunOnce(ctx)

		if !s.wait(ctx, s.state.IntervalDuration()) {
			return
		}
	}
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
