package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"gohome/core"
	"gohome/standalone/homing"
)

const testJSON = `{
	"name": "bench",
	"axes": {
		"x": {"step_pin": "gpio0", "dir_pin": "gpio1", "invert_dir": true},
		"z": {"step_pin": "gpio4", "dir_pin": "gpio5", "invert_step": true, "steps_per_mm": 400}
	},
	"endstops": {
		"x": {"pin": "gpio20"},
		"z": {"pin": "gpio22", "invert": true, "pull_up": false}
	},
	"homing": {"leave_pulses": 20, "max_pulses": 0},
	"enable_pin": "gpio8",
	"invert_enable": true
}`

const testYAML = `
name: bench
axes:
  x: {step_pin: gpio0, dir_pin: gpio1}
  y: {step_pin: gpio2, dir_pin: gpio3}
endstops:
  x: {pin: gpio20}
  y: {}
homing:
  pulse_microseconds: 10
  ramp_floor_microseconds: 100
  home_y_first: true
enable_pin: gpio8
expander:
  i2c_address: 0x21
  limit_pins: {y: 4}
  activity_pin: 7
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(testJSON))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Axes["x"].StepsPerMM != 80.0 {
		t.Errorf("Expected default steps_per_mm 80, got %f", cfg.Axes["x"].StepsPerMM)
	}
	if cfg.Axes["z"].StepsPerMM != 400.0 {
		t.Errorf("Expected steps_per_mm 400, got %f", cfg.Axes["z"].StepsPerMM)
	}
	if pu := cfg.Endstops["x"].PullUp; pu == nil || !*pu {
		t.Errorf("Expected pull-up default on x")
	}
	if pu := cfg.Endstops["z"].PullUp; pu == nil || *pu {
		t.Errorf("Expected explicit pull_up false on z to be kept")
	}
	if cfg.Homing.PulseMicroseconds != homing.DefaultPulseMicros {
		t.Errorf("Expected default pulse width, got %d", cfg.Homing.PulseMicroseconds)
	}
	if cfg.Homing.LeavePulses == nil || *cfg.Homing.LeavePulses != 20 {
		t.Errorf("Expected leave_pulses 20, got %v", cfg.Homing.LeavePulses)
	}
	if cfg.Homing.MaxPulses == nil || *cfg.Homing.MaxPulses != 0 {
		t.Errorf("Expected explicit max_pulses 0 to be kept")
	}
}

func TestHomingZeroCountsKept(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{
		"axes": {"x": {"step_pin": "gpio0", "dir_pin": "gpio1"}},
		"endstops": {"x": {"pin": "gpio20"}},
		"enable_pin": "gpio8",
		"homing": {"leave_pulses": 0, "settle_milliseconds": 0}
	}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	s := HomingSettings(cfg)
	if s.LeavePulses != 0 || s.SettleMillis != 0 {
		t.Errorf("Expected explicit zeros kept, got leave=%d settle=%d", s.LeavePulses, s.SettleMillis)
	}
	if s.MaxPulses != homing.DefaultMaxPulses {
		t.Errorf("Expected default max_pulses, got %d", s.MaxPulses)
	}

	s = HomingSettings(DefaultCartesianConfig())
	if s.LeavePulses != homing.DefaultLeavePulses || s.SettleMillis != homing.DefaultSettleMillis {
		t.Errorf("Expected defaults when unset, got leave=%d settle=%d", s.LeavePulses, s.SettleMillis)
	}
}

func TestHomingSettingsMasks(t *testing.T) {
	cfg, err := LoadConfig([]byte(testJSON))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	s := HomingSettings(cfg)
	wantInvert := core.DirBit(core.AxisX) | core.StepBit(core.AxisZ)
	if s.InvertMask != wantInvert {
		t.Errorf("Expected invert mask %s, got %s", wantInvert, s.InvertMask)
	}
	if s.LimitInvertMask != core.LimitBit(core.AxisZ) {
		t.Errorf("Expected limit invert mask %s, got %s", core.LimitBit(core.AxisZ), s.LimitInvertMask)
	}
	if s.MaxPulses != 0 {
		t.Errorf("Expected unbounded homing, got %d", s.MaxPulses)
	}

	l := HomingLayout(cfg)
	if l != (homing.Layout{XPresent: true, ZPresent: true}) {
		t.Errorf("Unexpected layout %+v", l)
	}
}

func TestLoadYAML(t *testing.T) {
	cfg, err := LoadYAML([]byte(testYAML))
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}

	if cfg.Expander == nil || cfg.Expander.I2CAddress != 0x21 {
		t.Fatalf("Expected expander at 0x21, got %+v", cfg.Expander)
	}
	if !HomingLayout(cfg).HomeYFirst {
		t.Errorf("Expected home_y_first")
	}

	limits := LimitPins(cfg)
	if len(limits) != 1 || limits[core.AxisX].Pin != 20 {
		t.Errorf("Expected only X on GPIO, got %v", limits)
	}
	if xl := ExpanderLimitPins(cfg); len(xl) != 1 || xl[core.AxisY] != 4 {
		t.Errorf("Expected Y on expander pin 4, got %v", xl)
	}

	s := HomingSettings(cfg)
	if s.PulseMicros != 10 || s.RampFloor != 100 {
		t.Errorf("Unexpected timing %+v", s)
	}
	if s.MaxPulses != homing.DefaultMaxPulses {
		t.Errorf("Expected default max_pulses, got %d", s.MaxPulses)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*MachineConfig)
		want   string
	}{
		{"unknown axis", func(c *MachineConfig) {
			c.Axes["e"] = AxisConfig{StepPin: "gpio6", DirPin: "gpio7", StepsPerMM: 1}
		}, `axis "e": unknown axis`},
		{"bad pin", func(c *MachineConfig) {
			a := c.Axes["x"]
			a.StepPin = "pa3"
			c.Axes["x"] = a
		}, "invalid pin name"},
		{"pin reuse", func(c *MachineConfig) {
			e := c.Endstops["y"]
			e.Pin = "gpio21"
			c.Endstops["x"] = e
		}, "already used"},
		{"endstop without axis", func(c *MachineConfig) {
			delete(c.Axes, "z")
		}, `endstop "z": no such axis`},
		{"expander address", func(c *MachineConfig) {
			c.Expander = &ExpanderConfig{I2CAddress: 0x40}
		}, "i2c_address 0x40"},
		{"expander pin range", func(c *MachineConfig) {
			c.Expander = &ExpanderConfig{I2CAddress: 0x20, LimitPins: map[string]int{"x": 16}}
		}, "outside 0-15"},
		{"homing timing", func(c *MachineConfig) {
			c.Homing.RampFloorMicroseconds = 1
		}, "homing:"},
		{"ramp floor range", func(c *MachineConfig) {
			c.Homing.RampFloorMicroseconds = 1 << 27
		}, "homing: ramp floor too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCartesianConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateWrapsPinErrors(t *testing.T) {
	cfg := DefaultCartesianConfig()
	cfg.EnablePin = "gpio99"
	if err := Validate(cfg); !errors.Is(err, core.ErrPinRange) {
		t.Errorf("Expected ErrPinRange, got %v", err)
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := DefaultCartesianConfig()
	cfg.EnablePin = "gpio99"
	cfg.Homing.RampFloorMicroseconds = 1
	x := cfg.Axes["x"]
	x.StepsPerMM = 0
	cfg.Axes["x"] = x

	errs := multierr.Errors(Validate(cfg))
	if len(errs) != 3 {
		t.Fatalf("Expected 3 errors, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), `axis "x"`) {
		t.Errorf("Expected the axis error first, got %v", errs[0])
	}
	if !errors.Is(errs[1], core.ErrPinRange) {
		t.Errorf("Expected ErrPinRange second, got %v", errs[1])
	}
}

func TestDefaultCartesianConfig(t *testing.T) {
	cfg := DefaultCartesianConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}

	l := HomingLayout(cfg)
	if !l.XPresent || !l.YPresent || !l.ZPresent || l.HomeYFirst {
		t.Errorf("Unexpected default layout %+v", l)
	}

	pins := StepperPins(cfg)
	if pins[core.AxisZ] != (core.StepperPins{Step: 4, Dir: 5}) {
		t.Errorf("Unexpected Z pins %+v", pins[core.AxisZ])
	}
	if IdleStepLevels(cfg) != 0 {
		t.Errorf("Expected active-high step lines")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "machine.yaml")
	if err := os.WriteFile(yamlPath, []byte(testYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(yamlPath); err != nil {
		t.Errorf("LoadFile yaml failed: %v", err)
	}

	jsonPath := filepath.Join(dir, "machine.json")
	if err := os.WriteFile(jsonPath, []byte(testJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(jsonPath); err != nil {
		t.Errorf("LoadFile json failed: %v", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "machine.toml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
	tomlPath := filepath.Join(dir, "machine.toml")
	os.WriteFile(tomlPath, []byte("x"), 0o644)
	if _, err := LoadFile(tomlPath); err == nil || !strings.Contains(err.Error(), "unknown config format") {
		t.Errorf("Expected unknown format error, got %v", err)
	}
}
