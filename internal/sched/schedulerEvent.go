// internal/sched/schedulerEvent.go

package sched

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusAdd StatusKind = iota
	StatusStart
	StatusSwitch
	StatusSleep
	StatusBlock
	StatusWake
	StatusTimeout
	StatusTerminate
	StatusRemove
)

// StatusEvent is emitted on every task lifecycle change
type StatusEvent struct {
	Tick   uint32
	Kind   StatusKind
	TaskID TaskID
	Name   string
	State  TaskState
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusAdd:
		return "Add"
	case StatusStart:
		return "Start"
	case StatusSwitch:
		return "Switch"
	case StatusSleep:
		return "Sleep"
	case StatusBlock:
		return "Block"
	case StatusWake:
		return "Wake"
	case StatusTimeout:
		return "Timeout"
	case StatusTerminate:
		return "Terminate"
	case StatusRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// EnableTrace writes one CSV record per status event to w.
func (s *Scheduler) EnableTrace(w io.Writer) error {
	cw := csv.NewWriter(w)

	// write header
	if err := cw.Write([]string{"tick", "event", "task_id", "task_name", "state"}); err != nil {
		return fmt.Errorf("write trace header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write trace header: %w", err)
	}
	s.trace = cw
	return nil
}

// EnableCSVLogging opens the given file path for CSV logging of events.
// The file is closed by Close.
func (s *Scheduler) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	if err := s.EnableTrace(f); err != nil {
		f.Close()
		return err
	}
	s.traceFile = f
	return nil
}

// emit records an event for t. A write error turns tracing off.
func (s *Scheduler) emit(kind StatusKind, t *Task) {
	if s.trace == nil {
		return
	}

	ev := StatusEvent{
		Tick:   s.clock.ClockTicks(),
		Kind:   kind,
		TaskID: t.id,
		Name:   t.name,
		State:  t.state,
	}
	rec := []string{
		strconv.FormatUint(uint64(ev.Tick), 10),
		ev.Kind.String(),
		strconv.Itoa(int(ev.TaskID)),
		ev.Name,
		ev.State.String(),
	}
	s.trace.Write(rec)
	s.trace.Flush()
	if err := s.trace.Error(); err != nil {
		s.log.Warn("trace disabled", "error", err)
		s.trace = nil
	}
}
