package homing

import "errors"

var (
	// ErrHomingTimeout is returned when an axis is still active after
	// Settings.MaxPulses pulses in one phase
	ErrHomingTimeout = errors.New("homing timeout: limit switch never reached")

	// ErrPeriodTooShort is returned when a pulse period does not exceed the
	// pulse width
	ErrPeriodTooShort = errors.New("pulse period not longer than pulse width")

	ErrPulseWidth = errors.New("pulse width must be positive")
	ErrRampFloor  = errors.New("ramp floor too short for pulse width")

	ErrRampFloorRange = errors.New("ramp floor too long for the timer arithmetic")
)
