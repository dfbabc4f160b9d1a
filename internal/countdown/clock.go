package countdown

import (
	"sync"
	"time"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// OffsetClock shifts another clock by an adjustable offset. It lets the CLI
// preview the countdown at another instant while the time keeps running.
type OffsetClock struct {
	base Clock

	mu     sync.RWMutex
	offset time.Duration
}

// NewOffsetClock wraps base. A nil base means SystemClock.
func NewOffsetClock(base Clock) *OffsetClock {
	if base == nil {
		base = SystemClock{}
	}
	return &OffsetClock{base: base}
}

func (c *OffsetClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base.Now().Add(c.offset)
}

// SetOffset replaces the offset.
func (c *OffsetClock) SetOffset(d time.Duration) {
	c.mu.Lock()
	c.offset = d
	c.mu.Unlock()
}

// SetNow adjusts the offset so that Now currently returns t.
func (c *OffsetClock) SetNow(t time.Time) {
	c.mu.Lock()
	c.offset = t.Sub(c.base.Now())
	c.mu.Unlock()
}

// Offset returns the current offset.
func (c *OffsetClock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}
