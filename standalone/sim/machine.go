// Package sim is a simulated three-axis machine with one limit switch per
// axis. It stands in for the board in tests and in the host "simulate"
// command: step pulses move virtual carriages, switches trigger by position,
// and every delay advances a virtual microsecond clock instead of waiting.
package sim

import (
	"gohome/core"
	"gohome/standalone/homing"
)

// Axis is the simulated carriage of one axis. Logical direction high moves
// it toward its switch (decreasing Pos).
type Axis struct {
	Pos      int32
	Trigger  int32 // switch is pressed while Pos <= Trigger
	NoSwitch bool  // switch never presses
}

// Pressed reports whether the axis switch is pressed
func (a Axis) Pressed() bool {
	return !a.NoSwitch && a.Pos <= a.Trigger
}

// Pulse is one step pulse seen on the stepping port
type Pulse struct {
	Start uint32         // clock at assert
	Width uint32         // assert to de-assert
	Axes  core.AxisSet   // axes stepped
	Dirs  core.PortValue // logical direction lines at assert
}

// End returns the clock at de-assert
func (p Pulse) End() uint32 {
	return p.Start + p.Width
}

// Machine is the simulated board
type Machine struct {
	Clock uint32 // microseconds
	Axes  [core.AxisCount]Axis

	InvertMask      core.PortValue
	LimitInvertMask core.PortValue

	Steps    core.StepCounter
	Position core.Position

	Enabled  bool
	Active   bool
	Syncs    int
	Settles  []uint32 // millisecond waits, in order
	Reads    int      // limit port samples
	Controls []bool   // every SetEnable value, in order

	// OnSync runs inside Synchronize, before it returns
	OnSync func()

	latch  core.PortValue // wire level
	pulses []Pulse
	open   int // index of the asserted pulse, -1 when none
}

// New returns a machine whose carriages sit distance steps away from their
// switches, wired with the polarities in settings
func New(settings homing.Settings, distance int32) *Machine {
	m := &Machine{
		InvertMask:      settings.InvertMask & core.SteppingMask,
		LimitInvertMask: settings.LimitInvertMask & core.LimitMask,
		open:            -1,
	}
	for i := range m.Axes {
		m.Axes[i] = Axis{Pos: distance}
	}
	m.latch = m.InvertMask.Steps()
	return m
}

// HomingMachine returns the hardware bundle for a Homer
func (m *Machine) HomingMachine() homing.Machine {
	return homing.Machine{
		Planner:  m,
		Stepping: (*steppingPort)(m),
		Limits:   (*limitPort)(m),
		Control:  m,
		Counter:  &m.Steps,
		Delay:    m,
		Position: &m.Position,
	}
}

// Pulses returns every pulse seen so far
func (m *Machine) Pulses() []Pulse {
	return m.pulses
}

// AxisPulses returns the pulses that stepped axis a
func (m *Machine) AxisPulses(a core.Axis) []Pulse {
	var out []Pulse
	for _, p := range m.pulses {
		if p.Axes.Has(a) {
			out = append(out, p)
		}
	}
	return out
}

// ClearLog forgets recorded pulses, settles and samples
func (m *Machine) ClearLog() {
	m.pulses = nil
	m.Settles = nil
	m.Controls = nil
	m.Reads = 0
	m.open = -1
}

// Latch returns the stepping port output at wire level
func (m *Machine) Latch() core.PortValue {
	return m.latch
}

// Synchronize implements the planner barrier; nothing is ever queued
func (m *Machine) Synchronize() {
	m.Syncs++
	if m.OnSync != nil {
		m.OnSync()
	}
}

// SetEnable records the driver enable output
func (m *Machine) SetEnable(on bool) {
	m.Enabled = on
	m.Controls = append(m.Controls, on)
}

// SetActivity records the activity indicator
func (m *Machine) SetActivity(on bool) {
	m.Active = on
}

// Microseconds advances the clock
func (m *Machine) Microseconds(n uint32) {
	m.Clock += n
	core.SetTime(core.GetTime() + core.TimerFromUS(n))
}

// Milliseconds advances the clock and records the wait
func (m *Machine) Milliseconds(n uint32) {
	m.Settles = append(m.Settles, n)
	m.Microseconds(n * 1000)
}

func (m *Machine) write(v core.PortValue) {
	was := m.latch.ApplyInvert(m.InvertMask)
	now := v.ApplyInvert(m.InvertMask)
	asserted := now.Steps() &^ was.Steps()
	released := was.Steps() &^ now.Steps()
	m.latch = v

	if released != 0 && m.open >= 0 {
		p := &m.pulses[m.open]
		p.Width = m.Clock - p.Start
		m.open = -1
	}
	if asserted == 0 {
		return
	}

	var axes core.AxisSet
	for _, a := range core.Axes {
		if asserted&core.StepBit(a) == 0 {
			continue
		}
		axes = axes.Add(a)
		if now.Dir(a) {
			m.Axes[a].Pos--
		} else {
			m.Axes[a].Pos++
		}
	}
	m.Steps.Count(asserted)
	m.pulses = append(m.pulses, Pulse{Start: m.Clock, Axes: axes, Dirs: now.Dirs()})
	m.open = len(m.pulses) - 1
}

func (m *Machine) readLimits() core.PortValue {
	m.Reads++
	v := core.LimitMask
	for _, a := range core.Axes {
		if m.Axes[a].Pressed() {
			v = v.WithLimit(a, false)
		}
	}
	return v.ApplyInvert(m.LimitInvertMask)
}

type steppingPort Machine

func (p *steppingPort) Read() core.PortValue   { return p.latch }
func (p *steppingPort) Write(v core.PortValue) { (*Machine)(p).write(v) }

type limitPort Machine

func (p *limitPort) Read() core.PortValue { return (*Machine)(p).readLimits() }

// Gaps returns the idle time between consecutive pulses
func Gaps(pulses []Pulse) []uint32 {
	if len(pulses) < 2 {
		return nil
	}
	gaps := make([]uint32, 0, len(pulses)-1)
	for i := 1; i < len(pulses); i++ {
		gaps = append(gaps, pulses[i].Start-pulses[i-1].End())
	}
	return gaps
}
