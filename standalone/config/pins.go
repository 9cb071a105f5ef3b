package config

import "gohome/core"

// StepperPins returns the step and direction pins of every configured axis.
// cfg must have passed Validate.
func StepperPins(cfg *MachineConfig) map[core.Axis]core.StepperPins {
	pins := make(map[core.Axis]core.StepperPins, len(cfg.Axes))
	for name, axis := range cfg.Axes {
		a, ok := core.AxisByName(name)
		if !ok {
			continue
		}
		step, _ := core.LookupPin(axis.StepPin)
		dir, _ := core.LookupPin(axis.DirPin)
		pins[a] = core.StepperPins{Step: step, Dir: dir}
	}
	return pins
}

// LimitPins returns the GPIO limit inputs of every endstop not routed
// through the expander
func LimitPins(cfg *MachineConfig) map[core.Axis]core.LimitPin {
	pins := make(map[core.Axis]core.LimitPin, len(cfg.Endstops))
	for name, endstop := range cfg.Endstops {
		a, ok := core.AxisByName(name)
		if !ok {
			continue
		}
		if cfg.Expander != nil {
			if _, ok := cfg.Expander.LimitPins[name]; ok {
				continue
			}
		}
		pin, _ := core.LookupPin(endstop.Pin)
		pins[a] = core.LimitPin{Pin: pin, PullUp: endstop.PullUp == nil || *endstop.PullUp}
	}
	return pins
}

// ExpanderLimitPins returns the expander limit inputs by axis
func ExpanderLimitPins(cfg *MachineConfig) map[core.Axis]int {
	pins := make(map[core.Axis]int)
	if cfg.Expander == nil {
		return pins
	}
	for name, pin := range cfg.Expander.LimitPins {
		if a, ok := core.AxisByName(name); ok {
			pins[a] = pin
		}
	}
	return pins
}

// IdleStepLevels returns the wire level of every step line between pulses
func IdleStepLevels(cfg *MachineConfig) core.PortValue {
	return HomingSettings(cfg).InvertMask.Steps()
}

// ExpanderPullUp reports whether the expander limit inputs use the internal
// pull-ups. The expander has one setting for all of them; any endstop routed
// there with pull_up false turns them off.
func ExpanderPullUp(cfg *MachineConfig) bool {
	if cfg.Expander == nil {
		return true
	}
	for name := range cfg.Expander.LimitPins {
		if e, ok := cfg.Endstops[name]; ok && e.PullUp != nil && !*e.PullUp {
			return false
		}
	}
	return true
}
