// Package standalone runs the firmware without a host: it reads G-code and
// GRBL system commands line by line, homes the machine on request and
// answers in the GRBL style ("ok", "error:...", "ALARM:...").
package standalone

import (
	"errors"

	"gohome/core"
	"gohome/standalone/config"
	"gohome/standalone/gcode"
	"gohome/standalone/homing"
	"gohome/standalone/kinematics"
	"gohome/standalone/planner"
)

var (
	errNoExpander     = errors.New("config routes pins to an expander but none was opened")
	errNotInitialized = errors.New("manager not initialized")
)

// MaxLineLength is the longest input line accepted
const MaxLineLength = 256

// Manager coordinates all standalone mode components
type Manager struct {
	config      *config.MachineConfig
	parser      *gcode.Parser
	interpreter *gcode.Interpreter
	planner     *planner.Planner
	homer       *homing.Homer
	position    core.Position

	// Serial interface
	inputBuffer  []byte
	outputBuffer []byte
	overflow     bool

	// Status
	initialized bool
	running     bool
}

// NewManager creates a new standalone mode manager from a JSON config
func NewManager(configData []byte) (*Manager, error) {
	cfg, err := config.LoadConfig(configData)
	if err != nil {
		return nil, err
	}

	return NewManagerWithConfig(cfg)
}

// NewManagerWithConfig creates a manager with an existing config
func NewManagerWithConfig(cfg *config.MachineConfig) (*Manager, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	mgr := &Manager{
		config:       cfg,
		parser:       gcode.NewParser(),
		inputBuffer:  make([]byte, 0, MaxLineLength),
		outputBuffer: make([]byte, 0, 256),
	}

	return mgr, nil
}

// Initialize configures the ports and sets up all components
func (m *Manager) Initialize(hw Hardware) error {
	if m.initialized {
		return errors.New("already initialized")
	}

	if err := hw.configure(); err != nil {
		return err
	}

	m.planner = planner.NewPlanner(hw.Ticker)
	if hw.Planner == nil {
		hw.Planner = m.planner
	}
	if hw.Position == nil {
		hw.Position = &m.position
	}

	homer, err := homing.NewHomer(hw.Machine, config.HomingSettings(m.config), config.HomingLayout(m.config))
	if err != nil {
		return err
	}
	m.homer = homer

	kin, err := kinematics.NewCartesian(m.config)
	if err != nil {
		return err
	}
	m.interpreter = gcode.NewInterpreter(m.config, kin, homer, m.planner, hw.Control)

	m.initialized = true
	return nil
}

// ProcessLine executes one line and queues the response
func (m *Manager) ProcessLine(line string) error {
	if !m.initialized {
		return errNotInitialized
	}

	cmd, err := m.parser.ParseLine(line)
	if err == nil && cmd != nil {
		var out string
		out, err = m.interpreter.Execute(cmd)
		if out != "" {
			m.SendResponse(out + "\n")
		}
	}

	var alarm *gcode.AlarmError
	switch {
	case err == nil:
		m.SendResponse("ok\n")
	case errors.As(err, &alarm):
		m.SendResponse("ALARM:" + alarm.Error() + "\n")
	default:
		m.SendResponse("error:" + err.Error() + "\n")
	}
	return err
}

// ProcessByte processes a single byte of input (for serial streaming). A
// '?' is answered at once with a status report, as GRBL does.
func (m *Manager) ProcessByte(b byte) error {
	if b == '?' && m.initialized {
		m.SendResponse(m.interpreter.StatusReport() + "\n")
		return nil
	}

	if b != '\n' && b != '\r' {
		if len(m.inputBuffer) >= MaxLineLength {
			m.overflow = true
			return nil
		}
		m.inputBuffer = append(m.inputBuffer, b)
		return nil
	}

	line := string(m.inputBuffer)
	m.inputBuffer = m.inputBuffer[:0]

	if m.overflow {
		m.overflow = false
		m.SendResponse("error:line too long\n")
		return errors.New("line too long")
	}

	// Remove trailing whitespace
	for len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		line = line[:len(line)-1]
	}
	if len(line) == 0 {
		return nil
	}
	return m.ProcessLine(line)
}

// SendResponse queues a response to be sent to the host
func (m *Manager) SendResponse(response string) {
	m.outputBuffer = append(m.outputBuffer, response...)
}

// GetOutput returns any pending output and clears the buffer
func (m *Manager) GetOutput() []byte {
	if len(m.outputBuffer) == 0 {
		return nil
	}

	output := make([]byte, len(m.outputBuffer))
	copy(output, m.outputBuffer)
	m.outputBuffer = m.outputBuffer[:0]
	return output
}

// Start begins standalone operation
func (m *Manager) Start() error {
	if !m.initialized {
		return errNotInitialized
	}

	m.running = true
	m.SendResponse("gohome " + m.config.Name + " ['$H'|'$X' to unlock]\n")
	return nil
}

// Stop halts all operation
func (m *Manager) Stop() {
	m.running = false
	if m.planner != nil {
		m.planner.ClearQueue()
	}
}

// IsRunning returns whether the manager is running
func (m *Manager) IsRunning() bool {
	return m.running
}

// State returns the current machine state
func (m *Manager) State() gcode.State {
	if m.interpreter == nil {
		return gcode.StateIdle
	}
	return m.interpreter.State()
}

// Homer returns the homing engine, nil before Initialize
func (m *Manager) Homer() *homing.Homer {
	return m.homer
}

// Config returns the machine configuration
func (m *Manager) Config() *config.MachineConfig {
	return m.config
}
