package config

// AxisConfig represents configuration for a single axis
type AxisConfig struct {
	StepPin    string  `json:"step_pin" yaml:"step_pin"`       // GPIO pin for step pulses
	DirPin     string  `json:"dir_pin" yaml:"dir_pin"`         // GPIO pin for direction
	InvertStep bool    `json:"invert_step" yaml:"invert_step"` // Step pulses are active-low
	InvertDir  bool    `json:"invert_dir" yaml:"invert_dir"`   // Home direction is the low level
	StepsPerMM float64 `json:"steps_per_mm" yaml:"steps_per_mm"`
}

// EndstopConfig represents configuration for an endstop. An entry marks
// the axis as homeable.
type EndstopConfig struct {
	Pin    string `json:"pin" yaml:"pin"`         // GPIO pin, unused with an expander
	Invert bool   `json:"invert" yaml:"invert"`   // Normally-closed switch
	PullUp *bool  `json:"pull_up" yaml:"pull_up"` // Defaults to true
}

// HomingConfig holds homing cycle timing
type HomingConfig struct {
	PulseMicroseconds     uint32  `json:"pulse_microseconds" yaml:"pulse_microseconds"`
	RampFloorMicroseconds uint32  `json:"ramp_floor_microseconds" yaml:"ramp_floor_microseconds"`
	LeavePulses           *uint32 `json:"leave_pulses" yaml:"leave_pulses"`               // 0 skips the trailing pulses
	SettleMilliseconds    *uint32 `json:"settle_milliseconds" yaml:"settle_milliseconds"` // 0 skips the pauses
	MaxPulses             *uint32 `json:"max_pulses" yaml:"max_pulses"`                   // 0 disables the bound
	HomeYFirst            bool    `json:"home_y_first" yaml:"home_y_first"`
}

// ExpanderConfig routes limit switches and control outputs through an
// MCP23017 on the I2C bus
type ExpanderConfig struct {
	I2CAddress  uint8          `json:"i2c_address" yaml:"i2c_address"`
	LimitPins   map[string]int `json:"limit_pins" yaml:"limit_pins"` // axis name -> expander pin 0-15
	EnablePin   *int           `json:"enable_pin" yaml:"enable_pin"`
	ActivityPin *int           `json:"activity_pin" yaml:"activity_pin"`
}

// MachineConfig represents the complete machine configuration
type MachineConfig struct {
	Name     string                   `json:"name" yaml:"name"`
	Axes     map[string]AxisConfig    `json:"axes" yaml:"axes"`         // "x", "y", "z"
	Endstops map[string]EndstopConfig `json:"endstops" yaml:"endstops"` // "x", "y", "z"
	Homing   HomingConfig             `json:"homing" yaml:"homing"`

	EnablePin    string `json:"enable_pin" yaml:"enable_pin"`
	InvertEnable bool   `json:"invert_enable" yaml:"invert_enable"`
	ActivityPin  string `json:"activity_pin" yaml:"activity_pin"` // optional

	Expander *ExpanderConfig `json:"expander" yaml:"expander"`
}
