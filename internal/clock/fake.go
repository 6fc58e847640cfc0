package clock

import "time"

// FakeClock is a manually driven Clock. It stands still between test
// steps so millisecond timestamps compare exactly.
type FakeClock struct {
	current time.Time
}

// NewFakeClock pins the clock to the given instant, normalized to UTC.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{current: start.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.current
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
