package testfixtures

import (
	"sync"
	"time"

	"github.com/example/boardgame-tables/internal/proposition"
)

// Clock is a settable time source shared by services and stores under test.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection. A nil clock falls back to time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// Ago returns the instant d before now.
func (c *Clock) Ago(d time.Duration) time.Time {
	return c.Now().Add(-d)
}

// On returns the instant at the given time of day, days calendar days from
// the clock's current date.
func (c *Clock) On(days int, at proposition.TimeOfDay) time.Time {
	return at.On(proposition.DateOf(c.Now()).AddDate(0, 0, days))
}
