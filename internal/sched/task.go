package sched

// TaskID is the slot index of a task in the scheduler's task table.
// It is only stable while the task is registered.
type TaskID int

// TaskState is the lifecycle state of a task.
type TaskState int

const (
	TaskNew TaskState = iota
	TaskReady
	TaskBlocked
	TaskBlockedWithTimeout
	TaskSleeping
	TaskTerminated
)

func (st TaskState) String() string {
	switch st {
	case TaskNew:
		return "New"
	case TaskReady:
		return "Ready"
	case TaskBlocked:
		return "Blocked"
	case TaskBlockedWithTimeout:
		return "BlockedWithTimeout"
	case TaskSleeping:
		return "Sleeping"
	case TaskTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// TaskFunc is the body of a task. It receives the scheduler it runs on and
// gives up control only through Yield, the sleep calls or BlockTask.
type TaskFunc func(s *Scheduler)

// Task represents one cooperatively scheduled unit.
type Task struct {
	id        TaskID
	name      string
	state     TaskState
	wakeTicks uint32   // absolute tick, valid while Sleeping or BlockedWithTimeout
	timedOut  bool     // set when the selection pass promoted a BlockedWithTimeout task
	waitNext  link     // next task on the wait list this task is blocked on
	regs      *Context // saved execution context, touched only by the Switcher
	body      TaskFunc
}

// NewTask creates a Ready task that is not yet registered with a scheduler.
// NOTE: the task gets its slot (and its ID) in Scheduler.AddTask.
func NewTask(name string, body TaskFunc) *Task {
	return &Task{
		id:    -1,
		name:  name,
		state: TaskReady,
		regs:  NewContext(nil),
		body:  body,
	}
}

func (t *Task) ID() TaskID     { return t.id }
func (t *Task) Name() string   { return t.name }
func (t *Task) Regs() *Context { return t.regs }

func (t *Task) State() TaskState       { return t.state }
func (t *Task) SetState(st TaskState)  { t.state = st }
func (t *Task) WakeTicks() uint32      { return t.wakeTicks }
func (t *Task) SetWakeTicks(wt uint32) { t.wakeTicks = wt }

// Start releases a task that was created while new tasks were suspended.
func (t *Task) Start() {
	if t.state == TaskNew {
		t.state = TaskReady
	}
}
