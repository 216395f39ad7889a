package sched

import (
	"math"
	"testing"
	"time"
)

func TestDue(t *testing.T) {
	tests := []struct {
		name string
		wake uint32
		now  uint32
		want bool
	}{
		{"before", 100, 99, false},
		{"at", 100, 100, true},
		{"after", 100, 101, true},
		{"wrapped deadline, now before wrap", 5, math.MaxUint32 - 5, false},
		{"wrapped deadline, now after wrap", 5, 6, true},
		{"deadline before wrap, now after wrap", math.MaxUint32 - 5, 3, true},
		{"half range ahead", math.MaxInt32, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Due(tt.wake, tt.now); got != tt.want {
				t.Errorf("Due(%d, %d) = %v, want %v", tt.wake, tt.now, got, tt.want)
			}
		})
	}
}

func TestDue_SameAcrossWrap(t *testing.T) {
	bases := []uint32{0, 1 << 31, math.MaxUint32 - 500, math.MaxUint32}
	for _, base := range bases {
		for d := int32(-1000); d <= 1000; d += 7 {
			wake := base + uint32(d)
			if got, want := Due(wake, base), d <= 0; got != want {
				t.Fatalf("base %d offset %d: Due = %v, want %v", base, d, got, want)
			}
		}
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(10, 0)
	if c.ClockTicks() != 10 || c.ClockTicks() != 10 {
		t.Fatal("clock without step moved on read")
	}
	c.Advance(5)
	if c.Now() != 15 {
		t.Errorf("Now() = %d, want 15", c.Now())
	}
	c.Set(math.MaxUint32)
	c.Advance(2)
	if c.Now() != 1 {
		t.Errorf("Now() = %d after wrap, want 1", c.Now())
	}

	stepped := NewManualClock(0, 3)
	if got := stepped.ClockTicks(); got != 0 {
		t.Errorf("first read = %d, want 0", got)
	}
	if got := stepped.ClockTicks(); got != 3 {
		t.Errorf("second read = %d, want 3", got)
	}
	if stepped.Now() != 6 {
		t.Errorf("Now() = %d, want 6", stepped.Now())
	}
}

func TestTickClock_Advances(t *testing.T) {
	c := NewTickClock(1000000)
	if c.Hz() != 1000000 {
		t.Fatalf("Hz() = %d", c.Hz())
	}

	t1 := c.ClockTicks()
	time.Sleep(2 * time.Millisecond)
	t2 := c.ClockTicks()

	if elapsed := t2 - t1; elapsed < 1000 {
		t.Errorf("elapsed %d ticks over 2ms, want at least 1000", elapsed)
	}
}
