package homing

import (
	"fmt"

	"gohome/core"
)

// RunPulses steps every axis in axes at once until each one's limit line
// reaches its terminal state, retiring axes one by one.
//
// With reverse false the axes move toward their switches and an axis retires
// when its switch triggers; the gap between pulses decays by 2% per pulse down
// to the ramp floor. With reverse true the axes move away and retire when
// their switch releases; the gap stays fixed. period is the starting pulse
// period and must exceed the pulse width.
func (h *Homer) RunPulses(axes core.AxisSet, reverse bool, period uint32) error {
	h.stats = Stats{Axes: axes}
	if axes.Empty() {
		return nil
	}
	if period <= h.settings.PulseMicros {
		return ErrPeriodTooShort
	}
	gap := period - h.settings.PulseMicros

	base := h.setDirection(reverse)
	h.delay.Microseconds(h.settings.PulseMicros)

	active := axes
	for {
		limits := h.readLimits(reverse)
		for _, a := range core.Axes {
			if active.Has(a) && !limits.Limit(a) {
				active = active.Remove(a)
				core.RecordTiming(core.EvtRetire, core.NewAxisSet(a), h.stats.Pulses, gap)
			}
		}
		if active.Empty() {
			break
		}

		if h.settings.MaxPulses > 0 && h.stats.Pulses >= h.settings.MaxPulses {
			core.RecordTiming(core.EvtFault, active, h.stats.Pulses, gap)
			return fmt.Errorf("%w (axes %s after %d pulses)", ErrHomingTimeout, active, h.stats.Pulses)
		}

		h.pulse(base, active)
		h.stats.Pulses++

		if !reverse && gap > h.settings.RampFloor {
			gap = gap * 98 / 100
			if gap < h.settings.RampFloor {
				gap = h.settings.RampFloor
			}
		}
		h.stats.LastGap = gap
		h.delay.Microseconds(gap)
	}

	core.RecordTiming(core.EvtPhaseDone, axes, h.stats.Pulses, h.stats.LastGap)
	return nil
}

// setDirection writes the direction lines for the phase and returns the
// port pattern held between pulses
func (h *Homer) setDirection(reverse bool) core.PortValue {
	var dirs core.PortValue
	if !reverse {
		dirs = core.DirMask
	}
	dirs = dirs.ApplyInvert(h.settings.InvertMask.Dirs())

	v := h.out.Read().WithDirs(dirs)
	h.out.Write(v)
	core.RecordTiming(core.EvtDirection, 0, uint32(v), 0)
	return v.WithSteps(h.settings.InvertMask.Steps())
}

// readLimits samples the limit lines and normalizes them so that a cleared
// bit means the axis is done for this phase
func (h *Homer) readLimits(reverse bool) core.PortValue {
	v := h.limits.Read().ApplyInvert(h.settings.LimitInvertMask.Limits())
	if reverse {
		v = v.ApplyInvert(core.LimitMask)
	}
	return v
}

// pulse emits one step pulse on every axis in axes
func (h *Homer) pulse(base core.PortValue, axes core.AxisSet) {
	h.pulseOff = base
	h.pulseOn = base.ApplyInvert(axes.StepBits())
	core.Critical(h.emit)
}

func (h *Homer) emitPulse() {
	h.out.Write(h.pulseOn)
	h.delay.Microseconds(h.settings.PulseMicros)
	h.out.Write(h.pulseOff)
}
