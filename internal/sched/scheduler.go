// internal/sched/scheduler.go

package sched

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"

	"github.com/emirpasic/gods/stacks/linkedliststack"
)

const fromScheduler = "sched"

// noSlot is returned by the selection pass when no task is ready to run.
const noSlot = -1

// TaskHandler observes a task at a task switch or at termination.
type TaskHandler func(t *Task)

// Scheduler multiplexes a fixed table of tasks onto one execution context.
// Tasks run until they yield, sleep or block; nothing is preempted.
type Scheduler struct {
	cfg      Config
	clock    TickSource
	switcher Switcher
	log      *slog.Logger
	maxSleep uint32 // ticks per sleep iteration

	tasks   []*Task // fixed capacity cfg.MaxTasks, holes are reused
	nTasks  int     // slots in use, including holes below the last live one
	current *Task   // never nil
	cur     int     // slot picked by the last selection pass, or noSlot

	switchHandler TaskHandler
	termHandlers  *linkedliststack.Stack // of TaskHandler, newest on top
	suspendNew    int

	// tracing-related
	trace     *csv.Writer
	traceFile *os.File
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real-time tick source.
func WithClock(c TickSource) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithSwitcher replaces the goroutine-backed context switch.
func WithSwitcher(sw Switcher) Option {
	return func(s *Scheduler) { s.switcher = sw }
}

// WithLogger sets the logger used for lifecycle and fatal messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a scheduler. The calling goroutine becomes the entry task,
// which occupies slot 0 and is currently running.
func New(cfg Config, opts ...Option) *Scheduler {
	cfg = cfg.sanitized()

	s := &Scheduler{
		cfg:          cfg,
		maxSleep:     cfg.maxSleepTicks(),
		tasks:        make([]*Task, cfg.MaxTasks),
		termHandlers: linkedliststack.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewTickClock(cfg.ClockHz)
	}
	if s.switcher == nil {
		s.switcher = GoroutineSwitcher{}
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.log = s.log.With("from", fromScheduler)

	entry := &Task{
		id:    0,
		name:  "main",
		state: TaskReady,
		regs:  NewContext(nil),
	}
	s.tasks[0] = entry
	s.nTasks = 1
	s.current = entry
	s.cur = 0

	return s
}

// Close tears the scheduler down. It must be called from the entry task.
// Observers are dropped and every other task's context is released.
func (s *Scheduler) Close() {
	s.switchHandler = nil
	s.termHandlers.Clear()

	for i := 0; i < s.nTasks; i++ {
		if t := s.tasks[i]; t != nil && t != s.current {
			t.regs.Release()
		}
	}

	if s.trace != nil {
		s.trace.Flush()
		s.trace = nil
	}
	if s.traceFile != nil {
		s.traceFile.Close()
		s.traceFile = nil
	}
}

// Run yields from the entry task until every other task has terminated
// or ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	for s.LiveTasks() > 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Yield()
	}
	return nil
}

// Yield gives up the processor to the next ready task in round-robin order.
// It returns when the calling task is selected again.
func (s *Scheduler) Yield() {
	// busy-poll: the entry task always exists, so something becomes ready
	for {
		if s.cur = s.nextTask(); s.cur != noSlot {
			break
		}
		s.assert(s.nTasks > 0, "no tasks to schedule")
	}

	next := s.tasks[s.cur]
	if next == s.current {
		return
	}

	old := s.current
	s.current = next

	if s.switchHandler != nil {
		s.switchHandler(next)
	}
	s.emit(StatusSwitch, next)

	s.switcher.Switch(old.regs, next.regs)
}

// Sleep suspends the current task for the given number of seconds.
func (s *Scheduler) Sleep(seconds uint) {
	if seconds > 0 {
		s.sleepTicks(s.cfg.usToTicks(uint64(seconds) * 1000000))
	}
}

// MsSleep suspends the current task for the given number of milliseconds.
func (s *Scheduler) MsSleep(ms uint) {
	if ms > 0 {
		s.sleepTicks(s.cfg.usToTicks(uint64(ms) * 1000))
	}
}

// UsSleep suspends the current task for the given number of microseconds.
func (s *Scheduler) UsSleep(us uint) {
	if us > 0 {
		s.sleepTicks(s.cfg.usToTicks(uint64(us)))
	}
}

// sleepTicks sleeps in chunks of at most maxSleep ticks so that no single
// deadline leaves the signed comparison window.
func (s *Scheduler) sleepTicks(ticks uint64) {
	for {
		chunk := uint64(s.clampTicks(ticks))
		s.sleepOnce(uint32(chunk))
		ticks -= chunk
		if ticks == 0 {
			return
		}
	}
}

func (s *Scheduler) sleepOnce(ticks uint32) {
	cur := s.current
	s.assert(cur.state == TaskReady, "sleeping task is not ready")

	cur.wakeTicks = s.clock.ClockTicks() + ticks
	cur.state = TaskSleeping
	s.emit(StatusSleep, cur)

	s.Yield()
}

func (s *Scheduler) clampTicks(ticks uint64) uint32 {
	if ticks > uint64(s.maxSleep) {
		return s.maxSleep
	}
	return uint32(ticks)
}

// CurrentTask returns the task that is running now.
func (s *Scheduler) CurrentTask() *Task { return s.current }

// IsValidTask reports whether t is registered with this scheduler.
func (s *Scheduler) IsValidTask(t *Task) bool {
	for i := 0; i < s.nTasks; i++ {
		if s.tasks[i] != nil && s.tasks[i] == t {
			return true
		}
	}
	return false
}

// Task returns the task in slot id, or nil.
func (s *Scheduler) Task(id TaskID) *Task {
	if id < 0 || int(id) >= s.nTasks {
		return nil
	}
	return s.tasks[id]
}

// LiveTasks returns the number of registered tasks, including the entry task
// and terminated tasks that have not been cleaned up yet.
func (s *Scheduler) LiveTasks() int {
	n := 0
	for i := 0; i < s.nTasks; i++ {
		if s.tasks[i] != nil {
			n++
		}
	}
	return n
}

// Capacity returns the task table ceiling.
func (s *Scheduler) Capacity() int { return len(s.tasks) }

// RegisterTaskSwitchHandler sets the observer called with the next task
// right before every context switch. Only one may be registered.
func (s *Scheduler) RegisterTaskSwitchHandler(h TaskHandler) {
	s.assert(s.switchHandler == nil, "task switch handler already registered")
	s.assert(h != nil, "nil task switch handler")
	s.switchHandler = h
}

// RegisterTaskTerminationHandler adds an observer called with every
// terminated task before it is destroyed. The newest handler runs first.
func (s *Scheduler) RegisterTaskTerminationHandler(h TaskHandler) {
	s.assert(h != nil, "nil task termination handler")
	s.termHandlers.Push(h)
}

// SuspendNewTasks causes all new tasks to be created in state New.
// Nested calls are allowed.
func (s *Scheduler) SuspendNewTasks() {
	s.suspendNew++
}

// ResumeNewTasks undoes one SuspendNewTasks. When the outermost call is
// undone, every task still in state New is started, in table order.
func (s *Scheduler) ResumeNewTasks() {
	s.assert(s.suspendNew > 0, "resume without suspend")
	s.suspendNew--
	if s.suspendNew > 0 {
		return
	}

	for i := 0; i < s.nTasks; i++ {
		if t := s.tasks[i]; t != nil && t.state == TaskNew {
			t.Start()
			s.log.Debug("task started", "task", t.name, "id", t.id)
			s.emit(StatusStart, t)
		}
	}
}

// Spawn creates a task running body and registers it.
func (s *Scheduler) Spawn(name string, body TaskFunc) *Task {
	t := NewTask(name, body)
	s.AddTask(t)
	return t
}

// AddTask registers t in the first free slot. Exceeding the task table
// ceiling is fatal.
func (s *Scheduler) AddTask(t *Task) {
	s.assert(t != nil, "add nil task")
	s.assert(t.id < 0, "task already registered")
	s.assert(t.body != nil, "task has no body")

	if s.suspendNew > 0 {
		t.state = TaskNew
	}

	slot := noSlot
	for i := 0; i < s.nTasks; i++ {
		if s.tasks[i] == nil {
			slot = i
			break
		}
	}
	if slot == noSlot {
		if s.nTasks >= len(s.tasks) {
			s.Fatal(fromScheduler, "System limit of tasks exceeded")
		}
		slot = s.nTasks
		s.nTasks++
	}

	s.tasks[slot] = t
	t.id = TaskID(slot)
	t.regs.bind(func() { s.run(t) })

	s.log.Debug("task added", "task", t.name, "id", t.id, "state", t.state)
	s.emit(StatusAdd, t)
}

// RemoveTask frees the slot of t. Removing an unregistered task is fatal.
func (s *Scheduler) RemoveTask(t *Task) {
	for i := 0; i < s.nTasks; i++ {
		if s.tasks[i] != t {
			continue
		}

		s.emit(StatusRemove, t)
		s.tasks[i] = nil
		if i == s.nTasks-1 {
			s.nTasks--
		}
		s.log.Debug("task removed", "task", t.name, "id", t.id)
		t.id = -1
		return
	}

	s.Fatal(fromScheduler, "remove of unregistered task")
}

// run is the entry point of a task's context.
func (s *Scheduler) run(t *Task) {
	t.body(s)

	t.state = TaskTerminated
	s.emit(StatusTerminate, t)

	// The selection pass destroys the task and its context never resumes.
	s.Yield()
}

// nextTask scans the table once, starting after the last scheduled slot.
// It returns the first runnable slot, or noSlot if none is ready or if it
// destroyed a terminated task on the way.
func (s *Scheduler) nextTask() int {
	n := s.cur
	if n == noSlot {
		n = 0
	}

	now := s.clock.ClockTicks()

	for i := 1; i <= s.nTasks; i++ {
		if n++; n >= s.nTasks {
			n = 0
		}

		t := s.tasks[n]
		if t == nil {
			continue
		}

		switch t.state {
		case TaskReady:
			return n

		case TaskBlocked, TaskNew:
			continue

		case TaskBlockedWithTimeout:
			if !Due(t.wakeTicks, now) {
				continue
			}
			t.state = TaskReady
			t.timedOut = true
			s.emit(StatusTimeout, t)
			return n

		case TaskSleeping:
			if !Due(t.wakeTicks, now) {
				continue
			}
			t.state = TaskReady
			return n

		case TaskTerminated:
			s.destroy(t)
			return noSlot

		default:
			s.Fatal(fromScheduler, "invalid task state "+t.state.String())
		}
	}

	return noSlot
}

// destroy runs the termination handlers for t, unregisters it and
// releases its context.
func (s *Scheduler) destroy(t *Task) {
	for _, h := range s.termHandlers.Values() {
		h.(TaskHandler)(t)
	}
	name, id := t.name, t.id
	s.RemoveTask(t)
	t.regs.Release()
	s.log.Debug("task destroyed", "task", name, "id", id)
}
