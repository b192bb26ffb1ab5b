package lockstep

import (
	"time"

	"github.com/tomcoolpxl/tank-wars/internal/sim"
)

// DefaultMaxTicksPerFrame bounds catch-up after a stall.
const DefaultMaxTicksPerFrame = 10

// Clock converts wall time into whole simulation ticks.
type Clock struct {
	step     time.Duration
	maxTicks int
	acc      time.Duration
	last     time.Time
}

// NewClock creates a clock for the given tick rate. After a long stall at
// most maxTicks ticks are run and the remaining backlog is dropped.
func NewClock(tickRate, maxTicks int) *Clock {
	if tickRate <= 0 {
		tickRate = sim.TicksPerSecond
	}
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicksPerFrame
	}
	return &Clock{
		step:     time.Second / time.Duration(tickRate),
		maxTicks: maxTicks,
	}
}

// Advance records the time of a new frame and returns how many ticks to run.
// The first call only sets the reference point.
func (c *Clock) Advance(now time.Time) int {
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	elapsed := now.Sub(c.last)
	c.last = now
	if elapsed < 0 {
		return 0
	}

	c.acc += elapsed
	n := int(c.acc / c.step)
	c.acc -= time.Duration(n) * c.step
	if n > c.maxTicks {
		n = c.maxTicks
		c.acc = 0
	}
	return n
}

// Reset forgets the reference point and any accumulated time.
func (c *Clock) Reset() {
	c.acc = 0
	c.last = time.Time{}
}

// Step returns the duration of one tick.
func (c *Clock) Step() time.Duration {
	return c.step
}
