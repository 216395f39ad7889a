package sched

import "runtime"

// Context is the saved execution state of a task. The scheduler never looks
// inside it; only a Switcher does.
type Context struct {
	entry   func()
	started bool
	resume  chan struct{}
	done    chan struct{}
}

// NewContext creates a context whose first activation runs entry.
// A nil entry describes a context that is already running (the entry task).
func NewContext(entry func()) *Context {
	return &Context{
		entry:   entry,
		started: entry == nil,
		resume:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// bind sets the function the context starts with on its first activation.
func (c *Context) bind(entry func()) {
	c.entry = entry
	c.started = false
}

// Release destroys the context. A goroutine parked on it exits instead of
// resuming; a context that never ran will never run.
func (c *Context) Release() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// Switcher saves the current execution context and restores another one.
type Switcher interface {
	Switch(old, next *Context)
}

// GoroutineSwitcher runs every task on its own goroutine and passes a single
// baton between them, so exactly one of them executes at any time.
type GoroutineSwitcher struct{}

// Switch hands the baton to next and parks the caller until old is resumed.
func (GoroutineSwitcher) Switch(old, next *Context) {
	if !next.started {
		next.started = true
		go next.entry()
	} else {
		next.resume <- struct{}{}
	}

	select {
	case <-old.resume:
	case <-old.done:
		runtime.Goexit()
	}
}
