package engine

import "time"

// Clock paces the session: one tick per value received from C.
type Clock interface {
	C() <-chan time.Time
	Stop()
}

// TickerClock ticks at a fixed rate.
type TickerClock struct {
	ticker *time.Ticker
}

// NewTickerClock returns a clock ticking rate times per second. Rates below
// one are treated as one.
func NewTickerClock(rate int) *TickerClock {
	if rate < 1 {
		rate = 1
	}

	return &TickerClock{ticker: time.NewTicker(time.Second / time.Duration(rate))}
}

func (c *TickerClock) C() <-chan time.Time {
	return c.ticker.C
}

func (c *TickerClock) Stop() {
	c.ticker.Stop()
}

// ManualClock ticks only when told to.
type ManualClock struct {
	ch  chan time.Time
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{
		ch:  make(chan time.Time),
		now: start,
	}
}

// Tick advances the clock by d and blocks until the tick is received.
func (c *ManualClock) Tick(d time.Duration) {
	c.now = c.now.Add(d)
	c.ch <- c.now
}

func (c *ManualClock) C() <-chan time.Time {
	return c.ch
}

func (c *ManualClock) Stop() {}
