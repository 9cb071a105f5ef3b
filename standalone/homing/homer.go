// Package homing drives the axes onto their limit switches and backs them off
// again, leaving the machine at its reference position.
//
// A homing cycle owns the processor: every wait is a busy-wait and step pulses
// are emitted with interrupts masked, so nothing else runs until HomeAll
// returns.
package homing

import "gohome/core"

// Planner is the motion queue barrier
type Planner interface {
	// Synchronize blocks until all queued motion has completed
	Synchronize()
}

// OutputPort holds the step and direction lines of every axis
type OutputPort interface {
	Read() core.PortValue
	Write(v core.PortValue)
}

// InputPort holds the limit lines of every axis
type InputPort interface {
	Read() core.PortValue
}

// ControlPort drives the stepper enable and activity indicator outputs
type ControlPort interface {
	SetEnable(on bool)
	SetActivity(on bool)
}

// StepCounter is the hardware pulse counter cleared after a cycle
type StepCounter interface {
	Reset()
}

// Machine bundles the hardware a Homer drives
type Machine struct {
	Planner  Planner
	Stepping OutputPort
	Limits   InputPort
	Control  ControlPort
	Counter  StepCounter
	Delay    core.Delay
	Position *core.Position
}

// Homer runs homing cycles on one machine
type Homer struct {
	planner  Planner
	out      OutputPort
	limits   InputPort
	control  ControlPort
	counter  StepCounter
	delay    core.Delay
	position *core.Position

	settings Settings
	layout   Layout

	// wire levels for the pulse in flight, read by emitPulse
	pulseOn  core.PortValue
	pulseOff core.PortValue
	emit     func()

	stats Stats
}

// Stats describes the last pulse generator call
type Stats struct {
	Axes    core.AxisSet // requested axes
	Pulses  uint32       // loop iterations that emitted a pulse
	LastGap uint32       // gap waited after the last pulse
}

// NewHomer checks settings and binds a Homer to machine
func NewHomer(machine Machine, settings Settings, layout Layout) (*Homer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	h := &Homer{
		planner:  machine.Planner,
		out:      machine.Stepping,
		limits:   machine.Limits,
		control:  machine.Control,
		counter:  machine.Counter,
		delay:    machine.Delay,
		position: machine.Position,
		settings: settings,
		layout:   layout,
	}
	if h.position == nil {
		h.position = new(core.Position)
	}
	h.emit = h.emitPulse
	return h, nil
}

// Settings returns the snapshot this Homer runs with
func (h *Homer) Settings() Settings {
	return h.settings
}

// Layout returns the axis layout this Homer homes
func (h *Homer) Layout() Layout {
	return h.layout
}

// LastStats returns the statistics of the last pulse generator call
func (h *Homer) LastStats() Stats {
	return h.stats
}

// Position returns the position counters the cycle zeroes
func (h *Homer) Position() *core.Position {
	return h.position
}
