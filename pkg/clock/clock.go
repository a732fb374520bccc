package clock

import (
	"sync"
	"time"
)

// Clock hands out the current time. The job store and the sweeper take one so
// tests can move time without sleeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// ManagedClock is a Clock moved by hand. Intended for tests.
type ManagedClock struct {
	mu     sync.Mutex
	start  time.Time
	offset time.Duration
}

func NewManaged(start time.Time) *ManagedClock {
	return &ManagedClock{start: start}
}

func (c *ManagedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(c.offset)
}

// Advance moves the clock forward and returns the new time.
func (c *ManagedClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
	return c.start.Add(c.offset)
}
