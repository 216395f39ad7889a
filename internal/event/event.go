// Package event implements a binary synchronization event on top of the
// scheduler's wait lists.
package event

import (
	"sync/atomic"

	"cooprunq/internal/sched"
)

const fromEvent = "event"

// Event is a boolean flag that tasks can wait on. Any number of tasks may
// wait at the same time; Set wakes all of them.
type Event struct {
	s       *sched.Scheduler
	state   atomic.Bool
	waiters sched.WaitList
}

// New creates an event with the given initial state.
func New(s *sched.Scheduler, state bool) *Event {
	e := &Event{s: s}
	e.state.Store(state)
	return e
}

// Close checks that no task is still waiting on the event.
func (e *Event) Close() {
	if !e.waiters.Empty() {
		e.s.Fatal(fromEvent, "event closed with waiting tasks")
	}
}

// State reports whether the event is set.
func (e *Event) State() bool {
	return e.state.Load()
}

// Clear resets the event.
func (e *Event) Clear() {
	e.state.Store(false)
	dataSyncBarrier()
}

// Set signals the event and wakes every waiting task. Setting an event that
// is already set does nothing.
func (e *Event) Set() {
	if e.state.Load() {
		return
	}
	e.state.Store(true)
	dataSyncBarrier()

	if !e.waiters.Empty() {
		e.s.WakeTasks(&e.waiters)
	}
}

// Wait blocks the current task until the event is set.
func (e *Event) Wait() {
	if e.state.Load() {
		return
	}

	e.s.BlockTask(&e.waiters, 0)

	if !e.state.Load() {
		e.s.Fatal(fromEvent, "woken while event is clear")
	}
}

// WaitWithTimeout blocks the current task until the event is set or us
// microseconds have passed; us == 0 waits without a timeout. It reports
// whether the timeout fired. The event can be set and time out at the same
// time, so callers check State to learn whether it was signalled.
func (e *Event) WaitWithTimeout(us uint) (timedOut bool) {
	if e.state.Load() {
		return false
	}
	return e.s.BlockTask(&e.waiters, us) == sched.WokeByTimeout
}

// Waiting returns the number of tasks blocked on the event.
func (e *Event) Waiting() int {
	return len(e.s.Waiters(&e.waiters))
}
