package internal

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Debouncer coalesces a burst of values into one deferred delivery carrying
// the last value. At most one delivery is pending at any time. Expired timers
// post the delivery to the runtime, so the consumer runs on the graph
// goroutine under Run or Drain.
type Debouncer struct {
	rt  *Runtime
	log zerolog.Logger

	delay time.Duration

	mu        sync.Mutex
	consumer  Action
	timer     Timer
	value     bool
	destroyed bool

	// bumped whenever the pending delivery is replaced or dropped,
	// a timer that fires with a stale generation does nothing
	generation uint64
}

// NewDebouncer wraps consumer and registers the debouncer with the runtime owner.
func (r *Runtime) NewDebouncer(delay time.Duration, consumer Action) (*Debouncer, error) {
	if consumer == nil {
		return nil, fmt.Errorf("debounce: nil consumer: %w", ErrNilDependency)
	}
	if delay < 0 {
		return nil, fmt.Errorf("debounce: negative delay %s", delay)
	}

	d := &Debouncer{
		rt:       r,
		log:      r.log.With().Str("component", "debounce").Dur("delay", delay).Logger(),
		delay:    delay,
		consumer: consumer,
	}
	r.owner.Adopt(d)

	return d, nil
}

// Action returns the debounced consumer.
func (d *Debouncer) Action() Action {
	return d.Call
}

// Call schedules delivery of v after the delay, superseding any pending one.
func (d *Debouncer) Call(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.rt.metrics.debounced(DebounceSuperseded)
		d.log.Debug().Bool("value", d.value).Msg("superseded")
	}

	d.generation++
	gen := d.generation

	d.value = v
	d.timer = d.rt.clock.AfterFunc(d.delay, func() {
		d.rt.Post(func() { d.fire(gen) })
	})

	d.rt.metrics.debounced(DebounceScheduled)
	d.log.Debug().Bool("value", v).Msg("scheduled")
}

// fire runs on the runtime goroutine. The delivery is dropped if it was
// cancelled, flushed or superseded after the timer expired.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.destroyed || d.timer == nil || gen != d.generation {
		d.mu.Unlock()
		return
	}

	d.timer = nil
	v, consumer := d.value, d.consumer
	d.mu.Unlock()

	d.rt.metrics.debounced(DebounceDelivered)
	d.log.Debug().Bool("value", v).Msg("delivered")

	consumer(v)
}

// Pending reports whether a delivery is scheduled or waiting to be drained.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

// Cancel drops the pending delivery, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancel()
}

func (d *Debouncer) cancel() {
	if d.timer == nil {
		return
	}

	d.timer.Stop()
	d.timer = nil
	d.generation++

	d.rt.metrics.debounced(DebounceCancelled)
	d.log.Debug().Msg("cancelled")
}

// Flush delivers the pending value now instead of waiting for the timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.destroyed || d.timer == nil {
		d.mu.Unlock()
		return
	}

	d.timer.Stop()
	d.timer = nil
	d.generation++
	v, consumer := d.value, d.consumer
	d.mu.Unlock()

	d.rt.metrics.debounced(DebounceFlushed)
	d.log.Debug().Bool("value", v).Msg("flushed")

	consumer(v)
}

// Destroy cancels the pending delivery and ignores every later call.
func (d *Debouncer) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return
	}

	d.cancel()
	d.destroyed = true
	d.consumer = nil

	d.rt.owner.Release(d)
}

// FlushDebouncers delivers the pending value of every debouncer owned by the runtime.
func (r *Runtime) FlushDebouncers() {
	// a consumer may destroy debouncers while they are flushed
	for _, child := range slices.Clone(r.owner.children) {
		if d, ok := child.(*Debouncer); ok {
			d.Flush()
		}
	}
}
