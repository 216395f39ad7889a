package job

import (
	"log/slog"

	"cooprunq/internal/event"
	"cooprunq/internal/sched"
)

// Sleeper returns a task body that sleeps ms milliseconds, rounds times.
func Sleeper(rounds int, ms uint) sched.TaskFunc {
	return func(s *sched.Scheduler) {
		for i := 0; i < rounds; i++ {
			s.MsSleep(ms)
		}
	}
}

// Counter returns a task body that bumps *n and yields, rounds times.
func Counter(rounds int, n *int) sched.TaskFunc {
	return func(s *sched.Scheduler) {
		for i := 0; i < rounds; i++ {
			*n++
			s.Yield()
		}
	}
}

// Signaler returns a task body that sets ev after delayMs milliseconds.
func Signaler(ev *event.Event, delayMs uint) sched.TaskFunc {
	return func(s *sched.Scheduler) {
		s.MsSleep(delayMs)
		ev.Set()
	}
}

// WaitResult is what a Waiter observed when its wait ended.
type WaitResult struct {
	Done      bool
	TimedOut  bool
	Signalled bool
}

// Waiter returns a task body that waits on ev for at most timeoutUs
// microseconds (0 = forever) and stores the outcome in res.
func Waiter(ev *event.Event, timeoutUs uint, res *WaitResult, log *slog.Logger) sched.TaskFunc {
	return func(s *sched.Scheduler) {
		timedOut := ev.WaitWithTimeout(timeoutUs)
		*res = WaitResult{
			Done:      true,
			TimedOut:  timedOut,
			Signalled: ev.State(),
		}
		log.Info("wait finished",
			"task", s.CurrentTask().Name(),
			"timed_out", res.TimedOut,
			"signalled", res.Signalled)
	}
}
