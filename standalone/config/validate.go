package config

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"gohome/core"
	"gohome/standalone/homing"
)

// Validate checks configuration correctness and reports every problem
// found. It does not modify cfg.
func Validate(cfg *MachineConfig) error {
	var errs error
	used := make(map[core.GPIOPin]string)
	claim := func(owner, name string) {
		pin, err := core.LookupPin(name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %q: %w", owner, name, err))
			return
		}
		if prev, ok := used[pin]; ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: gpio%d already used by %s", owner, pin, prev))
			return
		}
		used[pin] = owner
	}

	for _, name := range sortedNames(cfg.Axes) {
		axis := cfg.Axes[name]
		if _, ok := core.AxisByName(name); !ok {
			errs = multierr.Append(errs, fmt.Errorf("axis %q: unknown axis", name))
			continue
		}
		claim("axis "+name+" step_pin", axis.StepPin)
		claim("axis "+name+" dir_pin", axis.DirPin)
		if axis.StepsPerMM <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("axis %q: steps_per_mm must be positive", name))
		}
	}

	for _, name := range sortedNames(cfg.Endstops) {
		if _, ok := cfg.Axes[name]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("endstop %q: no such axis", name))
			continue
		}
		if cfg.Expander != nil {
			if _, ok := cfg.Expander.LimitPins[name]; ok {
				continue
			}
		}
		claim("endstop "+name, cfg.Endstops[name].Pin)
	}

	if cfg.Expander == nil || cfg.Expander.EnablePin == nil {
		claim("enable_pin", cfg.EnablePin)
	}
	if cfg.ActivityPin != "" && (cfg.Expander == nil || cfg.Expander.ActivityPin == nil) {
		claim("activity_pin", cfg.ActivityPin)
	}

	errs = multierr.Append(errs, validateExpander(cfg))

	if err := HomingSettings(cfg).Validate(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("homing: %w", err))
	}
	return errs
}

func validateExpander(cfg *MachineConfig) error {
	x := cfg.Expander
	if x == nil {
		return nil
	}
	if x.I2CAddress < 0x20 || x.I2CAddress > 0x27 {
		return fmt.Errorf("expander: i2c_address 0x%02x outside 0x20-0x27", x.I2CAddress)
	}

	var errs error
	used := make(map[int]string)
	claim := func(owner string, pin int) {
		if pin < 0 || pin > 15 {
			errs = multierr.Append(errs, fmt.Errorf("expander %s: pin %d outside 0-15", owner, pin))
			return
		}
		if prev, ok := used[pin]; ok {
			errs = multierr.Append(errs, fmt.Errorf("expander %s: pin %d already used by %s", owner, pin, prev))
			return
		}
		used[pin] = owner
	}

	for _, name := range sortedNames(x.LimitPins) {
		if _, ok := cfg.Endstops[name]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("expander limit_pins %q: no such endstop", name))
			continue
		}
		claim("limit "+name, x.LimitPins[name])
	}
	if x.EnablePin != nil {
		claim("enable_pin", *x.EnablePin)
	}
	if x.ActivityPin != nil {
		claim("activity_pin", *x.ActivityPin)
	}
	return errs
}

// sortedNames returns the keys of m in order, so reports are stable
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HomingSettings derives the homing snapshot from cfg
func HomingSettings(cfg *MachineConfig) homing.Settings {
	s := homing.Settings{
		PulseMicros: cfg.Homing.PulseMicroseconds,
		RampFloor:   cfg.Homing.RampFloorMicroseconds,
	}
	if cfg.Homing.LeavePulses != nil {
		s.LeavePulses = *cfg.Homing.LeavePulses
	}
	if cfg.Homing.SettleMilliseconds != nil {
		s.SettleMillis = *cfg.Homing.SettleMilliseconds
	}
	if cfg.Homing.MaxPulses != nil {
		s.MaxPulses = *cfg.Homing.MaxPulses
	}

	for name, axis := range cfg.Axes {
		a, ok := core.AxisByName(name)
		if !ok {
			continue
		}
		if axis.InvertStep {
			s.InvertMask |= core.StepBit(a)
		}
		if axis.InvertDir {
			s.InvertMask |= core.DirBit(a)
		}
	}
	for name, endstop := range cfg.Endstops {
		a, ok := core.AxisByName(name)
		if ok && endstop.Invert {
			s.LimitInvertMask |= core.LimitBit(a)
		}
	}
	return s
}

// HomingLayout derives the homed axes and their order from cfg
func HomingLayout(cfg *MachineConfig) homing.Layout {
	_, x := cfg.Endstops["x"]
	_, y := cfg.Endstops["y"]
	_, z := cfg.Endstops["z"]
	return homing.Layout{
		XPresent:   x,
		YPresent:   y,
		ZPresent:   z,
		HomeYFirst: cfg.Homing.HomeYFirst,
	}
}
