package homing

import (
	"fmt"

	"gohome/core"
)

// Approach moves axes toward their switches with a ramped speed until every
// switch has triggered
func (h *Homer) Approach(axes core.AxisSet) error {
	if err := h.RunPulses(axes, false, h.settings.ApproachPeriod()); err != nil {
		return fmt.Errorf("approach: %w", err)
	}
	return nil
}

// Leave backs axes off their switches at a fixed slow speed until every
// switch has released, then moves all of them LeavePulses further
func (h *Homer) Leave(axes core.AxisSet) error {
	if err := h.RunPulses(axes, true, h.settings.LeavePeriod()); err != nil {
		return fmt.Errorf("leave: %w", err)
	}
	if axes.Empty() {
		return nil
	}

	base := h.out.Read().WithSteps(h.settings.InvertMask.Steps())
	gap := h.settings.LeavePeriod()
	for i := uint32(0); i < h.settings.LeavePulses; i++ {
		h.pulse(base, axes)
		h.delay.Microseconds(gap)
	}
	core.RecordTiming(core.EvtTrailing, axes, h.settings.LeavePulses, gap)
	return nil
}

// HomeAll runs the full cycle: Z first, then X and Y in the configured
// order, each with an approach and a leave phase. Axes without a limit
// switch are skipped. The position counters are zeroed when the cycle starts.
//
// On a fault the remaining axes are not homed, the drivers are released and
// the step counter keeps its value.
func (h *Homer) HomeAll() error {
	return h.home(h.layout.Axes(), true)
}

// HomeAxes runs the cycle for the axes in axes that have a limit switch.
// Only their position counters are zeroed.
func (h *Homer) HomeAxes(axes core.AxisSet) error {
	return h.home(axes&h.layout.Axes(), false)
}

func (h *Homer) home(axes core.AxisSet, all bool) error {
	core.RecordTiming(core.EvtHomeStart, axes, 0, 0)
	core.DebugPrintln("[HOME] cycle start axes=" + axes.String())

	h.planner.Synchronize()

	h.control.SetEnable(true)
	h.control.SetActivity(true)

	// Zeroed up front, not re-derived from the switch positions.
	if all {
		h.position.Zero()
	} else {
		for _, a := range core.Axes {
			if axes.Has(a) {
				h.position[a] = 0
			}
		}
	}

	for _, a := range h.layout.Order() {
		if !axes.Has(a) {
			continue
		}
		if err := h.homeAxis(a); err != nil {
			h.control.SetEnable(false)
			h.control.SetActivity(false)
			core.DebugPrintln("[HOME] fault on " + a.String() + ": " + err.Error())
			return fmt.Errorf("home %s: %w", a, err)
		}
	}

	h.delay.Milliseconds(h.settings.SettleMillis)
	h.control.SetEnable(false)
	h.control.SetActivity(false)

	h.counter.Reset()

	core.RecordTiming(core.EvtHomeDone, axes, 0, 0)
	core.DebugPrintln("[HOME] cycle done")
	return nil
}

func (h *Homer) homeAxis(a core.Axis) error {
	axes := core.NewAxisSet(a)

	if err := h.Approach(axes); err != nil {
		return err
	}
	approach := h.stats
	h.delay.Milliseconds(h.settings.SettleMillis)

	if err := h.Leave(axes); err != nil {
		return err
	}
	h.delay.Milliseconds(h.settings.SettleMillis)

	if core.IsDebugEnabled() {
		core.DebugPrintln("[HOME] " + a.String() +
			" approach=" + core.Utoa(approach.Pulses) +
			" leave=" + core.Utoa(h.stats.Pulses+h.settings.LeavePulses))
	}
	return nil
}
