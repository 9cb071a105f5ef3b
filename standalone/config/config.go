package config

import (
	"encoding/json"

	"gohome/standalone/homing"
)

// LoadConfig parses a JSON configuration and returns a MachineConfig
func LoadConfig(jsonData []byte) (*MachineConfig, error) {
	var config MachineConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	return finish(&config)
}

func finish(config *MachineConfig) (*MachineConfig, error) {
	applyDefaults(config)
	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *MachineConfig) {
	if config.Name == "" {
		config.Name = "gohome"
	}

	for name, axis := range config.Axes {
		if axis.StepsPerMM == 0 {
			axis.StepsPerMM = 80.0 // Common value
		}
		config.Axes[name] = axis
	}

	for name, endstop := range config.Endstops {
		if endstop.PullUp == nil {
			pullUp := true
			endstop.PullUp = &pullUp
		}
		config.Endstops[name] = endstop
	}

	h := &config.Homing
	if h.PulseMicroseconds == 0 {
		h.PulseMicroseconds = homing.DefaultPulseMicros
	}
	if h.RampFloorMicroseconds == 0 {
		h.RampFloorMicroseconds = homing.DefaultRampFloor
	}
	if h.LeavePulses == nil {
		h.LeavePulses = Uint32(homing.DefaultLeavePulses)
	}
	if h.SettleMilliseconds == nil {
		h.SettleMilliseconds = Uint32(homing.DefaultSettleMillis)
	}
	if h.MaxPulses == nil {
		h.MaxPulses = Uint32(homing.DefaultMaxPulses)
	}
}

// Uint32 returns a pointer to v, for the optional homing counts
func Uint32(v uint32) *uint32 {
	return &v
}

// DefaultCartesianConfig returns the built-in configuration for a
// three-axis board with switches on every axis
func DefaultCartesianConfig() *MachineConfig {
	config := &MachineConfig{
		Name: "cartesian",
		Axes: map[string]AxisConfig{
			"x": {StepPin: "gpio0", DirPin: "gpio1", StepsPerMM: 80.0},
			"y": {StepPin: "gpio2", DirPin: "gpio3", StepsPerMM: 80.0},
			"z": {StepPin: "gpio4", DirPin: "gpio5", StepsPerMM: 400.0},
		},
		Endstops: map[string]EndstopConfig{
			"x": {Pin: "gpio20"},
			"y": {Pin: "gpio21"},
			"z": {Pin: "gpio22"},
		},
		EnablePin:    "gpio8",
		InvertEnable: true, // drivers enable on low
		ActivityPin:  "gpio25",
	}
	applyDefaults(config)
	return config
}
