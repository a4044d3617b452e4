package hitplot

import (
	"sync"
	"time"
)

// Clock supplies the current time to a Chart's scheduler.
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock with its monotonic reading.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real-time clock used when Options.Clock is nil.
func SystemClock() Clock { return systemClock{} }

// ManualClock is a Clock that only moves when told to. It is safe to advance
// from another goroutine than the one ticking the chart.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualClock creates a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
