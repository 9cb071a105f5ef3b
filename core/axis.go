package core

// Axis identifies one of the linear motion axes
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ

	AxisCount = 3
)

// Axes lists every axis in index order
var Axes = [AxisCount]Axis{AxisX, AxisY, AxisZ}

// String returns the lower-case axis letter
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "?"
}

// AxisByName maps "x", "y", "z" (either case) to an Axis
func AxisByName(name string) (Axis, bool) {
	switch name {
	case "x", "X":
		return AxisX, true
	case "y", "Y":
		return AxisY, true
	case "z", "Z":
		return AxisZ, true
	}
	return 0, false
}

// AxisSet is a set of axes stored as one bit per axis
type AxisSet uint8

// NewAxisSet returns a set holding the given axes
func NewAxisSet(axes ...Axis) AxisSet {
	var s AxisSet
	for _, a := range axes {
		s = s.Add(a)
	}
	return s
}

// Has reports whether a is in the set
func (s AxisSet) Has(a Axis) bool {
	return s&(1<<a) != 0
}

// Add returns the set with a included
func (s AxisSet) Add(a Axis) AxisSet {
	return s | (1 << a)
}

// Remove returns the set with a excluded
func (s AxisSet) Remove(a Axis) AxisSet {
	return s &^ (1 << a)
}

// Empty reports whether no axis is in the set
func (s AxisSet) Empty() bool {
	return s&(1<<AxisCount-1) == 0
}

// Len returns the number of axes in the set
func (s AxisSet) Len() int {
	n := 0
	for _, a := range Axes {
		if s.Has(a) {
			n++
		}
	}
	return n
}

// StepBits returns the step-line bits of every axis in the set
func (s AxisSet) StepBits() PortValue {
	var v PortValue
	for _, a := range Axes {
		if s.Has(a) {
			v |= StepBit(a)
		}
	}
	return v
}

// String formats the set as axis letters, e.g. "xz"
func (s AxisSet) String() string {
	if s.Empty() {
		return "-"
	}
	buf := make([]byte, 0, AxisCount)
	for _, a := range Axes {
		if s.Has(a) {
			buf = append(buf, a.String()...)
		}
	}
	return string(buf)
}

// Position holds the absolute position counters of the machine in steps
type Position [AxisCount]int32

// Zero resets every axis counter
func (p *Position) Zero() {
	for i := range p {
		p[i] = 0
	}
}
