package homing_test

import (
	"errors"
	"testing"

	"gohome/core"
	"gohome/standalone/homing"
	"gohome/standalone/sim"
)

func newTestHomer(t *testing.T, settings homing.Settings, layout homing.Layout, distance int32) (*homing.Homer, *sim.Machine) {
	t.Helper()
	m := sim.New(settings, distance)
	h, err := homing.NewHomer(m.HomingMachine(), settings, layout)
	if err != nil {
		t.Fatalf("NewHomer failed: %v", err)
	}
	return h, m
}

// expectedRamp replays the approach gap rule for n pulses
func expectedRamp(s homing.Settings, n int) []uint32 {
	gap := s.ApproachPeriod() - s.PulseMicros
	gaps := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		if gap > s.RampFloor {
			gap = gap * 98 / 100
			if gap < s.RampFloor {
				gap = s.RampFloor
			}
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

func TestApproachSingleAxisRamp(t *testing.T) {
	settings := homing.DefaultSettings()
	h, m := newTestHomer(t, settings, homing.Layout{ZPresent: true}, 0)

	const k = 150
	m.Axes[core.AxisZ].Pos = k

	if err := h.RunPulses(core.NewAxisSet(core.AxisZ), false, settings.ApproachPeriod()); err != nil {
		t.Fatalf("RunPulses failed: %v", err)
	}

	pulses := m.AxisPulses(core.AxisZ)
	if len(pulses) != k {
		t.Fatalf("Expected %d pulses on Z, got %d", k, len(pulses))
	}
	if len(m.Pulses()) != k {
		t.Errorf("Expected pulses on Z only, got %d pulses total", len(m.Pulses()))
	}
	if m.Reads != k+1 {
		t.Errorf("Expected %d limit samples, got %d", k+1, m.Reads)
	}

	want := expectedRamp(settings, k)
	gaps := sim.Gaps(pulses)
	for i, gap := range gaps {
		if gap != want[i] {
			t.Fatalf("Gap %d: expected %d, got %d", i, want[i], gap)
		}
		if gap < settings.RampFloor {
			t.Fatalf("Gap %d below floor: %d", i, gap)
		}
		if i > 0 && gap > gaps[i-1] {
			t.Fatalf("Gap %d increased: %d after %d", i, gap, gaps[i-1])
		}
	}
	if last := gaps[len(gaps)-1]; last != settings.RampFloor {
		t.Errorf("Expected ramp to reach the floor %d, ended at %d", settings.RampFloor, last)
	}

	stats := h.LastStats()
	if stats.Pulses != k || stats.LastGap != want[k-1] {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestApproachRampAtLongestFloor(t *testing.T) {
	settings := homing.DefaultSettings()
	settings.RampFloor = homing.MaxRampFloor
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true}, 0)
	m.Axes[core.AxisX].Pos = 4

	if err := h.Approach(core.NewAxisSet(core.AxisX)); err != nil {
		t.Fatalf("Approach failed: %v", err)
	}

	// 64-bit replay of the 2% decay
	gap := uint64(settings.ApproachPeriod() - settings.PulseMicros)
	gaps := sim.Gaps(m.AxisPulses(core.AxisX))
	for i, got := range gaps {
		gap = gap * 98 / 100
		if uint64(got) != gap {
			t.Fatalf("Gap %d: expected %d, got %d", i, gap, got)
		}
	}

	if err := h.Leave(core.NewAxisSet(core.AxisX)); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
}

func TestReturnsWhenLastAxisRetires(t *testing.T) {
	settings := homing.DefaultSettings()
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true}, 0)
	m.Axes[core.AxisX].Pos = 6

	if err := h.RunPulses(core.NewAxisSet(core.AxisX), false, settings.ApproachPeriod()); err != nil {
		t.Fatalf("RunPulses failed: %v", err)
	}

	// no empty pulse or extra gap after the iteration that retires X
	pulses := m.Pulses()
	last := pulses[len(pulses)-1]
	if want := last.End() + h.LastStats().LastGap; m.Clock != want {
		t.Errorf("Expected return at %d, got %d", want, m.Clock)
	}
}

func TestPulseWidthExact(t *testing.T) {
	settings := homing.DefaultSettings()
	settings.PulseMicros = 12
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true, YPresent: true}, 40)
	m.Axes[core.AxisY].Pos = 25

	if err := h.Approach(core.NewAxisSet(core.AxisX, core.AxisY)); err != nil {
		t.Fatalf("Approach failed: %v", err)
	}
	if err := h.Leave(core.NewAxisSet(core.AxisX, core.AxisY)); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	for i, p := range m.Pulses() {
		if p.Width != settings.PulseMicros {
			t.Fatalf("Pulse %d: expected width %d, got %d", i, settings.PulseMicros, p.Width)
		}
	}
}

func TestDirectionSettlesBeforeFirstPulse(t *testing.T) {
	settings := homing.DefaultSettings()
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true}, 3)
	start := m.Clock

	if err := h.RunPulses(core.NewAxisSet(core.AxisX), false, settings.ApproachPeriod()); err != nil {
		t.Fatalf("RunPulses failed: %v", err)
	}

	first := m.Pulses()[0]
	if first.Start != start+settings.PulseMicros {
		t.Errorf("Expected first pulse at %d, got %d", start+settings.PulseMicros, first.Start)
	}
	if !first.Dirs.Dir(core.AxisX) {
		t.Errorf("Approach should drive X toward its switch, dirs=%s", first.Dirs)
	}
}

func TestLeaveTwoAxesRetireIndependently(t *testing.T) {
	settings := homing.DefaultSettings()
	settings.LeavePulses = 0
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true, YPresent: true}, 0)

	// switches pressed; X releases after 3 pulses, Y after 7
	m.Axes[core.AxisX].Pos = -2
	m.Axes[core.AxisY].Pos = -6

	if err := h.RunPulses(core.NewAxisSet(core.AxisX, core.AxisY), true, settings.LeavePeriod()); err != nil {
		t.Fatalf("RunPulses failed: %v", err)
	}

	x := m.AxisPulses(core.AxisX)
	y := m.AxisPulses(core.AxisY)
	if len(x) != 3 {
		t.Errorf("Expected 3 pulses on X, got %d", len(x))
	}
	if len(y) != 7 {
		t.Errorf("Expected 7 pulses on Y, got %d", len(y))
	}
	if lastX := x[len(x)-1].Start; lastX >= y[3].Start {
		t.Errorf("X pulsed after it retired: last X at %d, Y iteration 4 at %d", lastX, y[3].Start)
	}

	gap := settings.LeavePeriod() - settings.PulseMicros
	for i, g := range sim.Gaps(m.Pulses()) {
		if g != gap {
			t.Fatalf("Gap %d: expected constant %d, got %d", i, gap, g)
		}
	}
	for i, p := range m.Pulses() {
		if p.Dirs != 0 {
			t.Fatalf("Pulse %d: leave should clear direction lines, got %s", i, p.Dirs)
		}
	}
}

func TestRetiredAxisNeverPulsesAgain(t *testing.T) {
	settings := homing.DefaultSettings()
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true, YPresent: true, ZPresent: true}, 0)
	m.Axes[core.AxisX].Pos = 5
	m.Axes[core.AxisY].Pos = 60
	m.Axes[core.AxisZ].Pos = 30

	if err := h.Approach(core.NewAxisSet(core.AxisX, core.AxisY, core.AxisZ)); err != nil {
		t.Fatalf("Approach failed: %v", err)
	}

	tests := []struct {
		axis core.Axis
		want int
	}{
		{core.AxisX, 5},
		{core.AxisY, 60},
		{core.AxisZ, 30},
	}
	for _, tt := range tests {
		if got := len(m.AxisPulses(tt.axis)); got != tt.want {
			t.Errorf("Axis %s: expected %d pulses, got %d", tt.axis, tt.want, got)
		}
		if m.Axes[tt.axis].Pos != 0 {
			t.Errorf("Axis %s: expected to stop on the switch, at %d", tt.axis, m.Axes[tt.axis].Pos)
		}
	}

	// first iterations step all three at once
	if m.Pulses()[0].Axes != core.NewAxisSet(core.AxisX, core.AxisY, core.AxisZ) {
		t.Errorf("Expected a combined first pulse, got %s", m.Pulses()[0].Axes)
	}
}

func TestDirectionFixedWithinCall(t *testing.T) {
	settings := homing.DefaultSettings()
	settings.InvertMask = core.DirBit(core.AxisY) | core.StepBit(core.AxisX)
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true, YPresent: true}, 12)

	if err := h.Approach(core.NewAxisSet(core.AxisX, core.AxisY)); err != nil {
		t.Fatalf("Approach failed: %v", err)
	}

	for i, p := range m.Pulses() {
		if p.Dirs != core.DirMask {
			t.Fatalf("Pulse %d: expected logical dirs %s, got %s", i, core.DirMask, p.Dirs)
		}
	}
	// inverted X step line idles high between pulses
	if m.Latch().Steps() != core.StepBit(core.AxisX) {
		t.Errorf("Expected idle step lines %s, got %s", core.StepBit(core.AxisX), m.Latch().Steps())
	}
	if m.Latch().Dirs() != core.DirBit(core.AxisX)|core.DirBit(core.AxisZ) {
		t.Errorf("Expected wire dirs with Y inverted, got %s", m.Latch().Dirs())
	}
}

func TestNormallyClosedSwitches(t *testing.T) {
	settings := homing.DefaultSettings()
	settings.LimitInvertMask = core.LimitMask
	settings.LeavePulses = 4
	h, m := newTestHomer(t, settings, homing.Layout{ZPresent: true}, 9)

	if err := h.Approach(core.NewAxisSet(core.AxisZ)); err != nil {
		t.Fatalf("Approach failed: %v", err)
	}
	if n := len(m.Pulses()); n != 9 {
		t.Errorf("Expected 9 approach pulses, got %d", n)
	}

	m.ClearLog()
	if err := h.Leave(core.NewAxisSet(core.AxisZ)); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if n := len(m.Pulses()); n != 1+4 {
		t.Errorf("Expected 1 release pulse and 4 trailing pulses, got %d", n)
	}
}

func TestLeaveTrailingPulsesOnAllRequestedAxes(t *testing.T) {
	settings := homing.DefaultSettings()
	settings.LeavePulses = 10
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true, ZPresent: true}, 0)

	// X already off its switch, Z pressed for 4 steps
	m.Axes[core.AxisX].Pos = 1
	m.Axes[core.AxisZ].Pos = -3

	if err := h.Leave(core.NewAxisSet(core.AxisX, core.AxisZ)); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	if got := len(m.AxisPulses(core.AxisX)); got != 10 {
		t.Errorf("Expected 10 trailing pulses on X, got %d", got)
	}
	if got := len(m.AxisPulses(core.AxisZ)); got != 4+10 {
		t.Errorf("Expected 14 pulses on Z, got %d", got)
	}

	trailing := m.Pulses()[len(m.Pulses())-10:]
	for i, p := range trailing {
		if p.Axes != core.NewAxisSet(core.AxisX, core.AxisZ) {
			t.Errorf("Trailing pulse %d stepped %s", i, p.Axes)
		}
	}
	for i, g := range sim.Gaps(trailing) {
		if g != settings.LeavePeriod() {
			t.Errorf("Trailing gap %d: expected %d, got %d", i, settings.LeavePeriod(), g)
		}
	}
}

func TestRunPulsesBoundedWhenSwitchNeverTriggers(t *testing.T) {
	settings := homing.DefaultSettings()
	settings.MaxPulses = 100
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true, YPresent: true}, 10)
	m.Axes[core.AxisY].NoSwitch = true

	err := h.RunPulses(core.NewAxisSet(core.AxisX, core.AxisY), false, settings.ApproachPeriod())
	if !errors.Is(err, homing.ErrHomingTimeout) {
		t.Fatalf("Expected ErrHomingTimeout, got %v", err)
	}
	if got := len(m.AxisPulses(core.AxisY)); got != 100 {
		t.Errorf("Expected 100 pulses on the stuck axis, got %d", got)
	}
	if got := len(m.AxisPulses(core.AxisX)); got != 10 {
		t.Errorf("Expected X to retire after 10 pulses, got %d", got)
	}
}

func TestRunPulsesEdgeCases(t *testing.T) {
	settings := homing.DefaultSettings()
	h, m := newTestHomer(t, settings, homing.Layout{XPresent: true}, 10)

	if err := h.RunPulses(0, false, settings.ApproachPeriod()); err != nil {
		t.Errorf("Empty set should return nil, got %v", err)
	}
	if len(m.Pulses()) != 0 || m.Reads != 0 {
		t.Errorf("Empty set touched the ports")
	}

	err := h.RunPulses(core.NewAxisSet(core.AxisX), false, settings.PulseMicros)
	if !errors.Is(err, homing.ErrPeriodTooShort) {
		t.Errorf("Expected ErrPeriodTooShort, got %v", err)
	}

	// a switch already pressed retires before the first pulse
	m.Axes[core.AxisX].Pos = 0
	if err := h.RunPulses(core.NewAxisSet(core.AxisX), false, settings.ApproachPeriod()); err != nil {
		t.Fatalf("RunPulses failed: %v", err)
	}
	if len(m.Pulses()) != 0 {
		t.Errorf("Expected no pulses on a pressed switch, got %d", len(m.Pulses()))
	}
}
