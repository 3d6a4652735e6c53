// ABOUTME: Raw monotonic microsecond clock capability
// ABOUTME: Real clock against a fixed start plus a manual clock for tests
package timesync

import (
	"sync"
	"time"
)

// Clock supplies raw monotonic time in microseconds. Implementations must be
// non-decreasing; the platform-backed clock uses Go's monotonic reading so
// wall-clock steps cannot disturb it.
type Clock interface {
	NowMicros() uint64
}

// MonotonicClock measures microseconds since its creation.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock creates a clock whose zero is now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// NowMicros returns microseconds elapsed since the clock was created.
func (c *MonotonicClock) NowMicros() uint64 {
	return uint64(time.Since(c.start).Microseconds())
}

// ManualClock is a settable clock for tests and the simulator.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

// NewManualClock creates a manual clock at the given microsecond reading.
func NewManualClock(startMicros uint64) *ManualClock {
	return &ManualClock{now: startMicros}
}

// NowMicros returns the current manual reading.
func (c *ManualClock) NowMicros() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by the given number of microseconds.
func (c *ManualClock) Advance(micros uint64) {
	c.mu.Lock()
	c.now += micros
	c.mu.Unlock()
}
