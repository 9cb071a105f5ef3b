package kinematics

import (
	"errors"
	"math"

	"gohome/core"
	"gohome/standalone/config"
)

var errStepsPerMM = errors.New("steps_per_mm must be positive")

// Cartesian implements basic Cartesian kinematics: each motor drives one
// axis at a fixed steps-per-millimeter ratio. Axes that are not configured
// read as 0.
type Cartesian struct {
	stepsPerMM [core.AxisCount]float64
}

// NewCartesian creates a new Cartesian kinematics instance
func NewCartesian(cfg *config.MachineConfig) (*Cartesian, error) {
	k := &Cartesian{}
	for name, axis := range cfg.Axes {
		a, ok := core.AxisByName(name)
		if !ok {
			continue
		}
		if axis.StepsPerMM <= 0 {
			return nil, errors.New("axis " + name + ": " + errStepsPerMM.Error())
		}
		k.stepsPerMM[a] = axis.StepsPerMM
	}
	return k, nil
}

// ToMM converts step counters to millimeters
func (k *Cartesian) ToMM(pos *core.Position) [core.AxisCount]float64 {
	var mm [core.AxisCount]float64
	for _, a := range core.Axes {
		if k.stepsPerMM[a] != 0 {
			mm[a] = float64(pos[a]) / k.stepsPerMM[a]
		}
	}
	return mm
}

// ToSteps converts millimeters on axis a to the nearest step count
func (k *Cartesian) ToSteps(a core.Axis, mm float64) int32 {
	return int32(math.Round(mm * k.stepsPerMM[a]))
}
