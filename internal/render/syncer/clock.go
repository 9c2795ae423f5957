package syncer

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancelable pending callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the callback was
	// prevented from running.
	Stop() bool
}

// Clock schedules deferred callbacks. The production implementation wraps
// time.AfterFunc; tests substitute ManualClock to control firing order
// without wall-clock delays.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// realClock is the wall-clock implementation.
type realClock struct{}

// NewClock returns the wall-clock Clock.
func NewClock() Clock {
	return realClock{}
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a Clock driven explicitly by Advance. Callbacks run
// synchronously on the advancing goroutine, in deadline order.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Duration
	f        func()
	stopped  bool
	fired    bool
}

// NewManualClock creates a manual clock at time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc schedules f to run when the clock has advanced d further.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, deadline: c.now + d, f: f}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves the clock forward and fires every timer whose deadline has
// been reached, in deadline order.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	now := c.now

	var due []*manualTimer
	remaining := c.pending[:0]
	for _, t := range c.pending {
		if !t.stopped && t.deadline <= now {
			due = append(due, t)
		} else if !t.stopped {
			remaining = append(remaining, t)
		}
	}
	c.pending = remaining
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline < due[j].deadline })
	for _, t := range due {
		t.fired = true
		t.f()
	}
}

// PendingCount returns the number of armed timers, for tests.
func (c *ManualClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
