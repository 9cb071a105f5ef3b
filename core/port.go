package core

// PortValue is the raw content of an 8-bit I/O port.
//
// The stepping port carries one step line and one direction line per axis,
// the limit port carries one limit line per axis. Bit positions follow the
// classic AVR pin-out used by GRBL boards so that masks written for those
// boards keep their meaning.
type PortValue uint8

// Stepping port bit positions
const (
	XStepBit = 2
	YStepBit = 3
	ZStepBit = 4
	XDirBit  = 5
	YDirBit  = 6
	ZDirBit  = 7
)

// Limit port bit positions
const (
	XLimitBit = 1
	YLimitBit = 2
	ZLimitBit = 3
)

const (
	StepMask     PortValue = 1<<XStepBit | 1<<YStepBit | 1<<ZStepBit
	DirMask      PortValue = 1<<XDirBit | 1<<YDirBit | 1<<ZDirBit
	SteppingMask           = StepMask | DirMask
	LimitMask    PortValue = 1<<XLimitBit | 1<<YLimitBit | 1<<ZLimitBit
)

var (
	stepBits  = [AxisCount]uint8{XStepBit, YStepBit, ZStepBit}
	dirBits   = [AxisCount]uint8{XDirBit, YDirBit, ZDirBit}
	limitBits = [AxisCount]uint8{XLimitBit, YLimitBit, ZLimitBit}
)

// StepBit returns the step line bit of an axis
func StepBit(a Axis) PortValue { return 1 << stepBits[a] }

// DirBit returns the direction line bit of an axis
func DirBit(a Axis) PortValue { return 1 << dirBits[a] }

// LimitBit returns the limit line bit of an axis
func LimitBit(a Axis) PortValue { return 1 << limitBits[a] }

// Step reports the step line of an axis
func (v PortValue) Step(a Axis) bool { return v&StepBit(a) != 0 }

// Dir reports the direction line of an axis
func (v PortValue) Dir(a Axis) bool { return v&DirBit(a) != 0 }

// Limit reports the limit line of an axis
func (v PortValue) Limit(a Axis) bool { return v&LimitBit(a) != 0 }

// WithStep returns v with the step line of a set to on
func (v PortValue) WithStep(a Axis, on bool) PortValue {
	return v.with(StepBit(a), on)
}

// WithDir returns v with the direction line of a set to on
func (v PortValue) WithDir(a Axis, on bool) PortValue {
	return v.with(DirBit(a), on)
}

// WithLimit returns v with the limit line of a set to on
func (v PortValue) WithLimit(a Axis, on bool) PortValue {
	return v.with(LimitBit(a), on)
}

// Steps returns only the step sub-field
func (v PortValue) Steps() PortValue { return v & StepMask }

// Dirs returns only the direction sub-field
func (v PortValue) Dirs() PortValue { return v & DirMask }

// Limits returns only the limit sub-field
func (v PortValue) Limits() PortValue { return v & LimitMask }

// WithDirs replaces the direction sub-field with the one in dirs,
// leaving every other bit untouched
func (v PortValue) WithDirs(dirs PortValue) PortValue {
	return (v &^ DirMask) | (dirs & DirMask)
}

// WithSteps replaces the step sub-field with the one in steps,
// leaving every other bit untouched
func (v PortValue) WithSteps(steps PortValue) PortValue {
	return (v &^ StepMask) | (steps & StepMask)
}

// ApplyInvert flips every line selected by mask. Applying the same mask twice
// yields the original value, so it converts logical levels to wire levels and
// back.
func (v PortValue) ApplyInvert(mask PortValue) PortValue {
	return v ^ mask
}

func (v PortValue) with(bit PortValue, on bool) PortValue {
	if on {
		return v | bit
	}
	return v &^ bit
}

// String renders the port as eight binary digits, most significant first
func (v PortValue) String() string {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		if v&(1<<(7-i)) != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf[:])
}
