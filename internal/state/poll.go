package state

import (
	"fmt"
	"sync"
	"time"

	"ipmon/internal/types"
)

// PollState holds the polling interval and running flag shared by the
// scheduler and command handlers. The interval always lies in [min, max].
type PollState struct {
	mu       sync.RWMutex
	interval int
	running  bool
	min      int
	max      int
}

// NewPollState creates a poll state with the given interval and bounds, in seconds
func NewPollState(interval, minSeconds, maxSeconds int) (*PollState, error) {
	if minSeconds <= 0 || minSeconds > maxSeconds {
		return nil, fmt.Errorf("invalid interval bounds [%d, %d]", minSeconds, maxSeconds)
	}
	if interval < minSeconds || interval > maxSeconds {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", types.ErrIntervalOutOfRange, interval, minSeconds, maxSeconds)
	}
	return &PollState{
		interval: interval,
		running:  true,
		min:      minSeconds,
		max:      maxSeconds,
	}, nil
}

// Interval returns the current interval in seconds
func (p *PollState) Interval() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.interval
}

// IntervalDuration returns the current interval as a duration
func (p *PollState) IntervalDuration() time.Duration {
	return time.Duration(p.Interval()) * time.Second
}

// SetInterval updates the interval, rejecting values outside the bounds
func (p *PollState) SetInterval(seconds int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seconds < p.min || seconds > p.max {
		return fmt.Errorf("%w: %d not in [%d, %d]", types.ErrIntervalOutOfRange, seconds, p.min, p.max)
	}
	p.interval = seconds
	return nil
}

// Bounds returns the inclusive interval bounds in seconds
func (p *PollState) Bounds() (minSeconds, maxSeconds int) {
	return p.min, p.max
}

// Running reports whether monitoring is active
func (p *PollState) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// SetRunning sets the running flag
func (p *PollState) SetRunning(running bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = running
}
