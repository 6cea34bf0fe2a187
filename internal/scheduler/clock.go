package scheduler

import (
	"context"
	"time"
)

// DefaultTickInterval is how often the scheduler re-reads the clock while
// mounted. Selectability can expire from the passage of time alone, so the
// tick runs independent of user interaction.
const DefaultTickInterval = 30 * time.Second

// Clock drives periodic re-evaluation of selectability. Now is injectable
// for tests.
type Clock struct {
	Now      func() time.Time
	Interval time.Duration
}

// NewClock returns a wall-clock ticking at the default interval.
func NewClock() *Clock {
	return &Clock{Now: time.Now, Interval: DefaultTickInterval}
}

// Run fires tick immediately and then on every interval until ctx is
// cancelled. Tick callbacks must be idempotent and side-effect-free with
// respect to in-progress wizard state; they may interleave with fetches.
func (c *Clock) Run(ctx context.Context, tick func(now time.Time)) {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	tick(now())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(now())
		}
	}
}
