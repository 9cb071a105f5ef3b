package core

import "sync/atomic"

// StepCounter models the hardware pulse-counting register. Port
// implementations add to it on every asserted step edge; the homing cycle
// clears it once the machine sits at its reference position.
type StepCounter struct {
	counts [AxisCount]uint32
}

// globalSteps is the counter shared by the GPIO ports
var globalSteps StepCounter

// GlobalStepCounter returns the firmware-wide step counter
func GlobalStepCounter() *StepCounter {
	return &globalSteps
}

// Count records one step on every axis whose step bit is set in steps
func (c *StepCounter) Count(steps PortValue) {
	for _, a := range Axes {
		if steps&StepBit(a) != 0 {
			atomic.AddUint32(&c.counts[a], 1)
		}
	}
}

// Axis returns the number of steps counted on one axis
func (c *StepCounter) Axis(a Axis) uint32 {
	return atomic.LoadUint32(&c.counts[a])
}

// Total returns the steps counted across all axes
func (c *StepCounter) Total() uint32 {
	var total uint32
	for _, a := range Axes {
		total += c.Axis(a)
	}
	return total
}

// Reset clears every axis count
func (c *StepCounter) Reset() {
	for i := range c.counts {
		atomic.StoreUint32(&c.counts[i], 0)
	}
}

// GetTotalStepCount returns the firmware-wide step total
func GetTotalStepCount() uint32 {
	return globalSteps.Total()
}
