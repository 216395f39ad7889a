package sched

// FatalError is the panic value of an unrecoverable scheduler condition:
// a broken caller contract or an exhausted task table.
type FatalError struct {
	From string
	Msg  string
}

func (e *FatalError) Error() string {
	return e.From + ": " + e.Msg
}

// Fatal logs msg at panic severity and halts by panicking with *FatalError.
func (s *Scheduler) Fatal(from, msg string) {
	s.log.Error(msg, "severity", "panic", "source", from)
	panic(&FatalError{From: from, Msg: msg})
}

func (s *Scheduler) assert(cond bool, msg string) {
	if !cond {
		s.Fatal(fromScheduler, "assertion failed: "+msg)
	}
}
