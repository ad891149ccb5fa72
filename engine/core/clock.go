package core

import "time"

// Clock measures the wall time of a pipeline phase.
type Clock struct {
	startTime time.Time
	elapsed   time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.elapsed = 0
}

// Stops the provided clock and keeps the elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Stop() time.Duration {
	if !c.startTime.IsZero() {
		c.elapsed = time.Since(c.startTime)
		c.startTime = time.Time{}
	}
	return c.elapsed
}

func (c *Clock) Elapsed() time.Duration {
	if !c.startTime.IsZero() {
		return time.Since(c.startTime)
	}
	return c.elapsed
}
