package usecase

import (
	"sync"
	"time"
)

// Timer is the subset of time.Timer the debouncer needs. Injectable so tests
// drive a virtual clock instead of waiting on the wall clock.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn to run once after d.
type TimerFactory func(d time.Duration, fn func()) Timer

func defaultTimerFactory(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer collapses bursts of triggers into a single trailing invocation
// once the delay window settles. Navigation-triggered impersonation re-checks
// use it so storage writes complete before state is re-read.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	pending  Timer
	stopped  bool
	newTimer TimerFactory
}

// NewDebouncer constructs a debouncer with the supplied settle delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, newTimer: defaultTimerFactory}
}

// WithTimerFactory injects a custom timer scheduler (primarily for testing).
func (d *Debouncer) WithTimerFactory(factory TimerFactory) *Debouncer {
	if factory != nil {
		d.newTimer = factory
	}
	return d
}

// Trigger schedules fn after the settle delay, cancelling any invocation
// still pending from an earlier trigger. Only the final settled value is
// observed; intermediate triggers inside the window are dropped.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = d.newTimer(d.delay, func() {
		d.mu.Lock()
		d.pending = nil
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn()
		}
	})
}

// Stop cancels any pending invocation and rejects future triggers. Used when
// the consuming component is torn down so stale results are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
