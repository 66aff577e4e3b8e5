// Package clocktest provides a manually advanced clock for debounce tests.
package clocktest

import (
	"slices"
	"sync"
	"time"
)

// Clock is a fake clock for the runtime. Timers fire only from Advance, on the
// goroutine that calls it, in deadline order.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timer
}

type timer struct {
	clock    *Clock
	deadline time.Duration
	fn       func()
	stopped  bool
}

func New() *Clock {
	return &Clock{}
}

// Now returns the time elapsed since the clock was created.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) AfterFunc(d time.Duration, fn func()) interface{ Stop() bool } {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &timer{clock: c, deadline: c.now + d, fn: fn}
	c.timers = append(c.timers, t)

	return t
}

// Advance moves the clock forward by d, firing every timer that comes due.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}

		c.now = next.deadline
		next.stopped = true
		c.timers = slices.DeleteFunc(c.timers, func(t *timer) bool { return t == next })
		c.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

func (c *Clock) nextDue(target time.Duration) *timer {
	var next *timer
	for _, t := range c.timers {
		if t.deadline > target {
			continue
		}
		if next == nil || t.deadline < next.deadline {
			next = t
		}
	}
	return next
}

func (t *timer) Stop() bool {
	c := t.clock

	c.mu.Lock()
	defer c.mu.Unlock()

	if t.stopped {
		return false
	}

	t.stopped = true
	c.timers = slices.DeleteFunc(c.timers, func(other *timer) bool { return other == t })

	return true
}
