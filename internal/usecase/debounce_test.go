package usecase

import (
	"testing"
	"time"
)

// fakeTimer records whether Stop was called; firing is driven manually.
type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	stopped := t.stopped
	t.stopped = true
	return !stopped
}

func (t *fakeTimer) fire() {
	if !t.stopped {
		t.fn()
	}
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) factory(_ time.Duration, fn func()) Timer {
	timer := &fakeTimer{fn: fn}
	s.timers = append(s.timers, timer)
	return timer
}

func (s *fakeScheduler) fireLast() {
	if len(s.timers) > 0 {
		s.timers[len(s.timers)-1].fire()
	}
}

func TestDebouncerCollapsesBurstToTrailingInvocation(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDebouncer(100 * time.Millisecond).WithTimerFactory(sched.factory)

	calls := 0
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls++ })
	}
	sched.fireLast()

	if calls != 1 {
		t.Fatalf("expected one trailing invocation, got %d", calls)
	}

	// Every earlier timer in the burst must have been cancelled.
	for i, timer := range sched.timers[:len(sched.timers)-1] {
		if !timer.stopped {
			t.Errorf("timer %d was not cancelled", i)
		}
	}
}

func TestDebouncerSeparateWindowsFireSeparately(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDebouncer(100 * time.Millisecond).WithTimerFactory(sched.factory)

	calls := 0
	d.Trigger(func() { calls++ })
	sched.fireLast()
	d.Trigger(func() { calls++ })
	sched.fireLast()

	if calls != 2 {
		t.Fatalf("expected two settled invocations, got %d", calls)
	}
}

func TestDebouncerStopDropsPendingAndRejectsTriggers(t *testing.T) {
	sched := &fakeScheduler{}
	d := NewDebouncer(100 * time.Millisecond).WithTimerFactory(sched.factory)

	calls := 0
	d.Trigger(func() { calls++ })
	d.Stop()
	sched.fireLast()

	d.Trigger(func() { calls++ })
	if len(sched.timers) != 1 {
		t.Fatalf("expected no timer scheduled after stop, got %d", len(sched.timers))
	}
	if calls != 0 {
		t.Fatalf("expected no invocations after stop, got %d", calls)
	}
}
