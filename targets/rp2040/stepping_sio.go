//go:build rp2040 || rp2350

package main

import (
	"device/rp"
	"errors"
	"machine"

	"gohome/core"
)

var errSIOPin = errors.New("SIO stepping needs pins below 32")

// SIOSteppingPort drives the step and direction lines through the
// single-cycle IO block. All lines that change in one Write change in the
// same register access, so axes pulsed together step at the same instant.
type SIOSteppingPort struct {
	stepMask [core.AxisCount]uint32
	dirMask  [core.AxisCount]uint32
	axes     core.AxisSet
	idle     core.PortValue
	value    core.PortValue
	counter  *core.StepCounter
}

// NewSIOSteppingPort builds the port. idle holds the wire level of the step
// lines between pulses.
func NewSIOSteppingPort(pins map[core.Axis]core.StepperPins, idle core.PortValue, counter *core.StepCounter) (*SIOSteppingPort, error) {
	p := &SIOSteppingPort{idle: idle & core.StepMask, counter: counter}
	for a, sp := range pins {
		if sp.Step >= 32 || sp.Dir >= 32 {
			return nil, errSIOPin
		}
		p.stepMask[a] = 1 << sp.Step
		p.dirMask[a] = 1 << sp.Dir
		p.axes = p.axes.Add(a)
	}
	return p, nil
}

// Configure sets every pin as an output, step lines idle and direction low
func (p *SIOSteppingPort) Configure() error {
	var set, clr uint32
	for _, a := range core.Axes {
		if !p.axes.Has(a) {
			continue
		}
		for _, mask := range []uint32{p.stepMask[a], p.dirMask[a]} {
			machine.Pin(bitIndex(mask)).Configure(machine.PinConfig{Mode: machine.PinOutput})
		}
		if p.idle.Step(a) {
			set |= p.stepMask[a]
		} else {
			clr |= p.stepMask[a]
		}
		clr |= p.dirMask[a]
	}
	rp.SIO.GPIO_OUT_CLR.Set(clr)
	rp.SIO.GPIO_OUT_SET.Set(set)
	p.value = p.idle
	return nil
}

// Read returns the output latch
func (p *SIOSteppingPort) Read() core.PortValue {
	return p.value
}

// Write drives every changed line in one set and one clear access
func (p *SIOSteppingPort) Write(v core.PortValue) {
	changed := p.value ^ v
	var set, clr uint32
	for _, a := range core.Axes {
		if !p.axes.Has(a) {
			continue
		}
		if changed&core.DirBit(a) != 0 {
			if v.Dir(a) {
				set |= p.dirMask[a]
			} else {
				clr |= p.dirMask[a]
			}
		}
		if changed&core.StepBit(a) != 0 {
			if v.Step(a) {
				set |= p.stepMask[a]
			} else {
				clr |= p.stepMask[a]
			}
		}
	}
	if clr != 0 {
		rp.SIO.GPIO_OUT_CLR.Set(clr)
	}
	if set != 0 {
		rp.SIO.GPIO_OUT_SET.Set(set)
	}

	if p.counter != nil {
		wasActive := (p.value ^ p.idle) & core.StepMask
		nowActive := (v ^ p.idle) & core.StepMask
		p.counter.Count(nowActive &^ wasActive & p.axes.StepBits())
	}
	p.value = v
}

func bitIndex(mask uint32) uint8 {
	var n uint8
	for mask > 1 {
		mask >>= 1
		n++
	}
	return n
}
