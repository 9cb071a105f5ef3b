package homing

import (
	"math"

	"gohome/core"
)

// Default timing, in microseconds unless noted
const (
	DefaultPulseMicros  = 30
	DefaultRampFloor    = 250
	DefaultLeavePulses  = 50
	DefaultSettleMillis = 50
	DefaultMaxPulses    = 100000
)

// MaxRampFloor keeps the leave period (RampFloor<<5) and the approach ramp
// product (gap*98) inside uint32
const MaxRampFloor = math.MaxUint32 / 100 >> 5

// Settings is the immutable timing and polarity snapshot a Homer runs with
type Settings struct {
	// PulseMicros is the width of one step pulse
	PulseMicros uint32

	// InvertMask flips step and direction lines between logical and wire
	// level. Only the stepping sub-fields are used.
	InvertMask core.PortValue

	// LimitInvertMask flips limit lines; set for normally-closed switches
	LimitInvertMask core.PortValue

	// RampFloor is the shortest inter-pulse gap the approach ramp reaches.
	// Approach starts at RampFloor<<4 and leave runs at RampFloor<<5.
	RampFloor uint32

	// LeavePulses are emitted on every axis after its switch released
	LeavePulses uint32

	// SettleMillis is the pause after each phase
	SettleMillis uint32

	// MaxPulses bounds one pulse generator call; 0 means no bound
	MaxPulses uint32
}

// DefaultSettings returns the settings used when no configuration overrides
// them
func DefaultSettings() Settings {
	return Settings{
		PulseMicros:  DefaultPulseMicros,
		RampFloor:    DefaultRampFloor,
		LeavePulses:  DefaultLeavePulses,
		SettleMillis: DefaultSettleMillis,
		MaxPulses:    DefaultMaxPulses,
	}
}

// Validate checks that the approach period leaves room for a gap after the
// pulse and that the phase periods fit the timing arithmetic
func (s Settings) Validate() error {
	if s.PulseMicros == 0 {
		return ErrPulseWidth
	}
	if s.RampFloor > MaxRampFloor {
		return ErrRampFloorRange
	}
	if s.RampFloor == 0 || s.RampFloor<<4 <= s.PulseMicros {
		return ErrRampFloor
	}
	return nil
}

// ApproachPeriod is the starting pulse period of the approach phase
func (s Settings) ApproachPeriod() uint32 {
	return s.RampFloor << 4
}

// LeavePeriod is the fixed pulse period of the leave phase
func (s Settings) LeavePeriod() uint32 {
	return s.RampFloor << 5
}

// Layout selects which axes take part in a homing cycle and in which order
type Layout struct {
	ZPresent   bool
	XPresent   bool
	YPresent   bool
	HomeYFirst bool
}

// Axes returns the axes that have a limit switch
func (l Layout) Axes() core.AxisSet {
	var s core.AxisSet
	if l.XPresent {
		s = s.Add(core.AxisX)
	}
	if l.YPresent {
		s = s.Add(core.AxisY)
	}
	if l.ZPresent {
		s = s.Add(core.AxisZ)
	}
	return s
}

// Order returns the axes in homing order: Z first, then X and Y in the
// configured order. Absent axes are left out.
func (l Layout) Order() []core.Axis {
	order := make([]core.Axis, 0, core.AxisCount)
	if l.ZPresent {
		order = append(order, core.AxisZ)
	}
	first, second := core.AxisX, core.AxisY
	if l.HomeYFirst {
		first, second = second, first
	}
	for _, a := range [2]core.Axis{first, second} {
		if l.Axes().Has(a) {
			order = append(order, a)
		}
	}
	return order
}
