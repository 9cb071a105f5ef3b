// Package kinematics maps motor step counters to machine coordinates
package kinematics

import "gohome/core"

// Kinematics defines the interface for coordinate transformations
type Kinematics interface {
	// ToMM converts step counters to machine coordinates in millimeters
	ToMM(pos *core.Position) [core.AxisCount]float64

	// ToSteps converts a coordinate on one axis to a step count
	ToSteps(a core.Axis, mm float64) int32
}
