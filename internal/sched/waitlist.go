package sched

// link refers to a task slot; the zero value means "no task".
type link int

func linkTo(id TaskID) link   { return link(id + 1) }
func (l link) valid() bool    { return l != 0 }
func (l link) target() TaskID { return TaskID(l - 1) }

// WakeReason tells a blocked task why it was resumed.
type WakeReason int

const (
	WokeBySignal WakeReason = iota
	WokeByTimeout
)

func (r WakeReason) String() string {
	if r == WokeByTimeout {
		return "timeout"
	}
	return "signal"
}

// WaitList is an intrusive stack of tasks blocked on a shared condition.
// It belongs to the primitive that embeds it. The zero value is an empty list.
type WaitList struct {
	head link
}

// Empty reports whether no task is waiting on the list.
func (wl *WaitList) Empty() bool { return !wl.head.valid() }

// Waiters returns the IDs of the waiting tasks, most recent first.
func (s *Scheduler) Waiters(wl *WaitList) []TaskID {
	var ids []TaskID
	for l := wl.head; l.valid(); l = s.tasks[l.target()].waitNext {
		ids = append(ids, l.target())
	}
	return ids
}

// BlockTask pushes the current task onto wl and yields until WakeTasks is
// called on the list or, for us > 0, until us microseconds have passed.
// Both can happen before the task runs again, so callers must re-check the
// condition they waited for.
func (s *Scheduler) BlockTask(wl *WaitList, us uint) WakeReason {
	cur := s.current
	s.assert(wl != nil, "block on nil wait list")
	s.assert(!cur.waitNext.valid(), "task is already on a wait list")
	s.assert(cur.state == TaskReady, "blocking task is not ready")

	cur.waitNext = wl.head
	wl.head = linkTo(cur.id)
	cur.timedOut = false

	if us == 0 {
		cur.state = TaskBlocked
	} else {
		cur.wakeTicks = s.clock.ClockTicks() + s.clampTicks(s.cfg.usToTicks(uint64(us)))
		cur.state = TaskBlockedWithTimeout
	}
	s.emit(StatusBlock, cur)

	s.Yield()

	s.assert(s.current == cur, "resumed task is not current")

	// A task resumed by its timeout is still on the list.
	var prev *Task
	for l := wl.head; l.valid(); {
		t := s.tasks[l.target()]
		if t == cur {
			if prev != nil {
				prev.waitNext = t.waitNext
			} else {
				wl.head = t.waitNext
			}
			break
		}
		prev = t
		l = t.waitNext
	}
	cur.waitNext = 0

	if cur.timedOut {
		cur.timedOut = false
		return WokeByTimeout
	}
	return WokeBySignal
}

// WakeTasks detaches every task from wl and makes it ready. Every task on
// the list must be blocked.
func (s *Scheduler) WakeTasks(wl *WaitList) {
	s.assert(wl != nil, "wake on nil wait list")

	l := wl.head
	wl.head = 0

	for l.valid() {
		t := s.tasks[l.target()]
		if t == nil {
			s.Fatal(fromScheduler, "wait list refers to an empty slot")
		}

		if t.state != TaskBlocked && t.state != TaskBlockedWithTimeout {
			s.Fatal(fromScheduler, "Tried to wake non-blocked task")
		}
		t.state = TaskReady
		s.emit(StatusWake, t)

		l = t.waitNext
		t.waitNext = 0
	}
}
