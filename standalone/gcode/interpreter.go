package gcode

import (
	"errors"
	"strconv"

	"gohome/core"
	"gohome/standalone/config"
	"gohome/standalone/kinematics"
	"gohome/standalone/planner"
)

var (
	ErrUnsupported = errors.New("unsupported command")
	ErrAlarmLock   = errors.New("alarm lock, send $H or $X")
)

// AlarmError reports a fault that locked the machine
type AlarmError struct {
	Err error
}

func (e *AlarmError) Error() string { return e.Err.Error() }
func (e *AlarmError) Unwrap() error { return e.Err }

// State is the machine state reported by the status query
type State uint8

const (
	StateIdle State = iota
	StateHoming
	StateAlarm
)

func (s State) String() string {
	switch s {
	case StateHoming:
		return "Home"
	case StateAlarm:
		return "Alarm"
	}
	return "Idle"
}

// Homer runs homing cycles
type Homer interface {
	HomeAll() error
	HomeAxes(axes core.AxisSet) error
	Position() *core.Position
}

// Planner is the timed command queue
type Planner interface {
	QueueDwell(ms uint32, line uint32) error
	Synchronize()
	ClearQueue()
}

// Motors switches the stepper drivers
type Motors interface {
	SetEnable(on bool)
}

// Interpreter executes G-code commands
type Interpreter struct {
	config  *config.MachineConfig
	kin     kinematics.Kinematics
	homer   Homer
	planner Planner
	motors  Motors

	state State
	homed core.AxisSet
	line  uint32
}

// NewInterpreter creates a new G-code interpreter
func NewInterpreter(cfg *config.MachineConfig, kin kinematics.Kinematics, homer Homer, planner Planner, motors Motors) *Interpreter {
	return &Interpreter{
		config:  cfg,
		kin:     kin,
		homer:   homer,
		planner: planner,
		motors:  motors,
	}
}

// Execute executes a parsed command. The returned text, if any, is a report
// to send before the acknowledgement.
func (interp *Interpreter) Execute(cmd *Command) (string, error) {
	if cmd == nil || cmd.Type == 0 {
		return "", nil
	}
	interp.line++

	if interp.state == StateAlarm && !interp.allowedInAlarm(cmd) {
		return "", ErrAlarmLock
	}

	switch cmd.Type {
	case 'G':
		return "", interp.executeG(cmd)
	case 'M':
		return interp.executeM(cmd)
	case TypeSystem:
		return "", interp.executeSystem(cmd)
	case TypeStatus:
		return interp.StatusReport(), nil
	}

	return "", ErrUnsupported
}

func (interp *Interpreter) allowedInAlarm(cmd *Command) bool {
	switch cmd.Type {
	case TypeStatus:
		return true
	case TypeSystem:
		return cmd.System == "H" || cmd.System == "X"
	case 'G':
		return cmd.Number == 28
	}
	return false
}

// executeG handles G-codes
func (interp *Interpreter) executeG(cmd *Command) error {
	switch cmd.Number {
	case 4: // G4 - Dwell, P in milliseconds or S in seconds
		ms := cmd.GetParameter('P', 0) + cmd.GetParameter('S', 0)*1000
		if !(ms >= 0 && ms <= planner.MaxDwellMillis) {
			return ErrBadNumber
		}
		return interp.planner.QueueDwell(uint32(ms), interp.line)
	case 21, 90: // G21 millimeters, G90 absolute: the only modes supported
		return nil
	case 28: // G28 - Home
		return interp.doHome(cmd)
	}

	return ErrUnsupported
}

// executeM handles M-codes
func (interp *Interpreter) executeM(cmd *Command) (string, error) {
	switch cmd.Number {
	case 17: // M17 - Enable steppers
		interp.motors.SetEnable(true)
	case 18, 84: // M18/M84 - Disable steppers once queued commands are done
		interp.planner.Synchronize()
		interp.motors.SetEnable(false)
		interp.homed = 0
	case 114: // M114 - Get current position
		return interp.PositionReport(), nil
	default:
		return "", ErrUnsupported
	}

	return "", nil
}

// executeSystem handles GRBL $ commands
func (interp *Interpreter) executeSystem(cmd *Command) error {
	switch cmd.System {
	case "H":
		return interp.home(0)
	case "X":
		if interp.state == StateAlarm {
			interp.state = StateIdle
		}
		return nil
	}
	return ErrUnsupported
}

// doHome executes homing (G28). Without axis words every axis is homed.
func (interp *Interpreter) doHome(cmd *Command) error {
	var axes core.AxisSet
	if cmd.HasParameter('X') {
		axes = axes.Add(core.AxisX)
	}
	if cmd.HasParameter('Y') {
		axes = axes.Add(core.AxisY)
	}
	if cmd.HasParameter('Z') {
		axes = axes.Add(core.AxisZ)
	}
	return interp.home(axes)
}

// home runs a homing cycle; an empty set homes every axis
func (interp *Interpreter) home(axes core.AxisSet) error {
	interp.state = StateHoming

	var err error
	if axes.Empty() {
		err = interp.homer.HomeAll()
		axes = config.HomingLayout(interp.config).Axes()
	} else {
		err = interp.homer.HomeAxes(axes)
		axes &= config.HomingLayout(interp.config).Axes()
	}

	if err != nil {
		interp.state = StateAlarm
		interp.homed = 0
		interp.planner.ClearQueue()
		return &AlarmError{Err: err}
	}

	interp.state = StateIdle
	interp.homed |= axes
	return nil
}

// State returns the current machine state
func (interp *Interpreter) State() State {
	return interp.state
}

// Homed returns the axes homed since the drivers were last released
func (interp *Interpreter) Homed() core.AxisSet {
	return interp.homed
}

// PositionReport formats the position in the M114 style, in millimeters
// followed by raw step counts
func (interp *Interpreter) PositionReport() string {
	pos := interp.homer.Position()
	mm := interp.kin.ToMM(pos)
	buf := make([]byte, 0, 64)
	for _, a := range core.Axes {
		if a > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, upper(a)...)
		buf = append(buf, ':')
		buf = strconv.AppendFloat(buf, mm[a], 'f', 3, 64)
	}
	buf = append(buf, " Count"...)
	for _, a := range core.Axes {
		buf = append(buf, ' ')
		buf = append(buf, upper(a)...)
		buf = append(buf, ':')
		buf = append(buf, core.Itoa(int(pos[a]))...)
	}
	return string(buf)
}

// StatusReport formats the GRBL status line, e.g. <Idle|MPos:0.000,0.000,0.000>
func (interp *Interpreter) StatusReport() string {
	mm := interp.kin.ToMM(interp.homer.Position())
	buf := make([]byte, 0, 48)
	buf = append(buf, '<')
	buf = append(buf, interp.state.String()...)
	buf = append(buf, "|MPos:"...)
	for _, a := range core.Axes {
		if a > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, mm[a], 'f', 3, 64)
	}
	buf = append(buf, '>')
	return string(buf)
}

func upper(a core.Axis) string {
	return string(a.String()[0] - ('a' - 'A'))
}
