// internal/sched/tickclock.go

package sched

import (
	"math/bits"
	"sync/atomic"
	"time"
)

// TickSource is a monotonic free-running counter. It wraps at 2^32.
type TickSource interface {
	ClockTicks() uint32
}

// Due reports whether a wake deadline has been reached. The signed difference
// keeps the result correct across a counter wrap as long as the deadline is
// within half the counter range of now.
func Due(wake, now uint32) bool {
	return int32(wake-now) <= 0
}

// TickClock derives ticks from the monotonic wall clock at a fixed rate.
type TickClock struct {
	start time.Time
	hz    uint64
}

// NewTickClock creates a clock counting hz ticks per second from now.
func NewTickClock(hz uint64) *TickClock {
	return &TickClock{start: time.Now(), hz: hz}
}

// ClockTicks returns the current tick count, truncated to 32 bits.
func (c *TickClock) ClockTicks() uint32 {
	ns := uint64(time.Since(c.start))
	hi, lo := bits.Mul64(ns, c.hz)
	ticks, _ := bits.Div64(hi%uint64(time.Second), lo, uint64(time.Second))
	return uint32(ticks)
}

// Hz returns the tick rate.
func (c *TickClock) Hz() uint64 { return c.hz }

// ManualClock is a TickSource that only moves when told to. With a non-zero
// step every read advances it, which keeps busy-polling loops making progress.
type ManualClock struct {
	now  atomic.Uint32
	step uint32
}

// NewManualClock creates a clock at start that advances by step per read.
func NewManualClock(start, step uint32) *ManualClock {
	c := &ManualClock{step: step}
	c.now.Store(start)
	return c
}

func (c *ManualClock) ClockTicks() uint32 {
	if c.step == 0 {
		return c.now.Load()
	}
	return c.now.Add(c.step) - c.step
}

// Now returns the current tick count without advancing the clock.
func (c *ManualClock) Now() uint32 { return c.now.Load() }

// Advance moves the clock forward by n ticks, wrapping at 2^32.
func (c *ManualClock) Advance(n uint32) { c.now.Add(n) }

// Set moves the clock to an absolute tick count.
func (c *ManualClock) Set(ticks uint32) { c.now.Store(ticks) }
