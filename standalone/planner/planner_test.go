package planner

import (
	"testing"

	"gohome/core"
)

func resetClock(t *testing.T) {
	t.Helper()
	core.ClearTimers()
	core.SetTime(0)
	t.Cleanup(func() {
		core.ClearTimers()
		core.SetTime(0)
	})
}

func TestSynchronizeDrainsDwells(t *testing.T) {
	resetClock(t)
	p := NewPlanner(VirtualTicker{})

	if !p.IsIdle() {
		t.Fatalf("New planner should be idle")
	}

	for i, ms := range []uint32{5, 10, 2} {
		if err := p.QueueDwell(ms, uint32(i+1)); err != nil {
			t.Fatalf("QueueDwell failed: %v", err)
		}
	}
	if p.Pending() != 3 {
		t.Errorf("Expected 3 pending blocks, got %d", p.Pending())
	}

	p.Synchronize()

	if !p.IsIdle() {
		t.Errorf("Planner should be idle after Synchronize")
	}
	if p.Completed() != 3 {
		t.Errorf("Expected 3 completed blocks, got %d", p.Completed())
	}
	if now := core.GetTime(); now != core.TimerFromMS(17) {
		t.Errorf("Expected clock at 17ms, got %d", now)
	}
}

func TestSynchronizeIdleReturnsImmediately(t *testing.T) {
	resetClock(t)
	ticks := 0
	p := NewPlanner(ClockTicker(func() uint32 { ticks++; return 0 }))

	p.Synchronize()
	if ticks != 0 {
		t.Errorf("Idle planner should not tick, ticked %d times", ticks)
	}
}

func TestClockTickerFollowsSource(t *testing.T) {
	resetClock(t)
	var now uint32
	p := NewPlanner(ClockTicker(func() uint32 {
		now += 1000
		return now
	}))

	if err := p.QueueDwell(3, 0); err != nil {
		t.Fatalf("QueueDwell failed: %v", err)
	}
	p.Synchronize()

	if now != 3000 {
		t.Errorf("Expected synchronize to poll until 3000us, stopped at %d", now)
	}
}

func TestQueueFull(t *testing.T) {
	resetClock(t)
	p := NewPlanner(VirtualTicker{})

	// one block executes, QueueSize wait behind it
	for i := 0; i <= QueueSize; i++ {
		if err := p.QueueDwell(1, 0); err != nil {
			t.Fatalf("QueueDwell %d failed: %v", i, err)
		}
	}
	if err := p.QueueDwell(1, 0); err != ErrQueueFull {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestLongestDwell(t *testing.T) {
	resetClock(t)
	p := NewPlanner(VirtualTicker{})

	if err := p.QueueDwell(MaxDwellMillis+1, 0); err != ErrDwellTooLong {
		t.Fatalf("Expected ErrDwellTooLong, got %v", err)
	}
	if err := p.QueueDwell(MaxDwellMillis, 0); err != nil {
		t.Fatalf("QueueDwell failed: %v", err)
	}
	if p.IsIdle() {
		t.Fatalf("Dwell finished before any time passed")
	}
	p.Synchronize()
	if now := core.GetTime(); now != core.TimerFromMS(MaxDwellMillis) {
		t.Errorf("Expected the dwell to end at %d, ended at %d", core.TimerFromMS(MaxDwellMillis), now)
	}
}

func TestClearQueue(t *testing.T) {
	resetClock(t)
	p := NewPlanner(VirtualTicker{})

	p.QueueDwell(50, 0)
	p.QueueDwell(50, 0)
	p.ClearQueue()

	if !p.IsIdle() {
		t.Errorf("Planner should be idle after ClearQueue")
	}
	if core.TimersPending() {
		t.Errorf("ClearQueue left a timer scheduled")
	}
}
