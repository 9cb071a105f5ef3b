// Package mcu talks to a board running the firmware over its serial line
// protocol: one command per line, answered by report lines and a final
// "ok", "error:<msg>" or "ALARM:<msg>".
package mcu

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gohome/host/serial"
)

// Default reply timeouts
const (
	DefaultTimeout     = 5 * time.Second
	DefaultHomeTimeout = 2 * time.Minute
)

var (
	ErrNotConnected = errors.New("not connected to MCU")
	ErrTimeout      = errors.New("timed out waiting for reply")
	ErrBadStatus    = errors.New("malformed status report")
)

// CommandError is a command the firmware refused or a fault it raised
type CommandError struct {
	Line  string // command sent
	Msg   string // text after "error:" or "ALARM:"
	Alarm bool
}

func (e *CommandError) Error() string {
	kind := "error"
	if e.Alarm {
		kind = "alarm"
	}
	return fmt.Sprintf("%s: %s: %s", e.Line, kind, e.Msg)
}

// Status is a parsed "<State|MPos:x,y,z>" report
type Status struct {
	State string
	MPos  [3]float64
}

// MCU represents a connection to a board
type MCU struct {
	port    serial.Port
	pending []byte
	buf     [64]byte

	// Timeout bounds the wait for each reply
	Timeout time.Duration

	// Banner holds lines received before the first command
	Banner []string

	connected bool
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{Timeout: DefaultTimeout}
}

// Connect connects to an MCU via serial port
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects to an MCU with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	// Give MCU time to initialize (if it just powered on)
	time.Sleep(100 * time.Millisecond)

	return m.ConnectPort(port)
}

// ConnectPort uses an already open port and collects the startup banner
func (m *MCU) ConnectPort(port serial.Port) error {
	m.port = port
	m.pending = m.pending[:0]
	m.connected = true

	m.Banner = nil
	for {
		line, err := m.readLine(time.Now().Add(50 * time.Millisecond))
		if errors.Is(err, ErrTimeout) {
			return nil
		}
		if err != nil {
			return err
		}
		m.Banner = append(m.Banner, line)
	}
}

// Close closes the connection to the MCU
func (m *MCU) Close() error {
	if !m.connected {
		return nil
	}
	m.connected = false
	return m.port.Close()
}

// IsConnected returns whether the MCU is connected
func (m *MCU) IsConnected() bool {
	return m.connected
}

// Send writes one command line and waits for its acknowledgement. The
// report lines received before it are returned.
func (m *MCU) Send(line string) ([]string, error) {
	return m.SendTimeout(line, m.Timeout)
}

// SendTimeout is Send with an explicit reply timeout
func (m *MCU) SendTimeout(line string, timeout time.Duration) ([]string, error) {
	if !m.connected {
		return nil, ErrNotConnected
	}
	line = strings.TrimSpace(line)
	if _, err := io.WriteString(m.port, line+"\n"); err != nil {
		return nil, fmt.Errorf("send %q: %w", line, err)
	}

	deadline := time.Now().Add(timeout)
	var report []string
	for {
		reply, err := m.readLine(deadline)
		if err != nil {
			return report, fmt.Errorf("send %q: %w", line, err)
		}
		switch {
		case reply == "ok":
			return report, nil
		case strings.HasPrefix(reply, "error:"):
			return report, &CommandError{Line: line, Msg: reply[len("error:"):]}
		case strings.HasPrefix(reply, "ALARM:"):
			return report, &CommandError{Line: line, Msg: reply[len("ALARM:"):], Alarm: true}
		}
		report = append(report, reply)
	}
}

// Status queries the machine state. The query is answered immediately,
// without an acknowledgement.
func (m *MCU) Status() (Status, error) {
	if !m.connected {
		return Status{}, ErrNotConnected
	}
	if _, err := io.WriteString(m.port, "?"); err != nil {
		return Status{}, err
	}
	deadline := time.Now().Add(m.Timeout)
	for {
		line, err := m.readLine(deadline)
		if err != nil {
			return Status{}, fmt.Errorf("status: %w", err)
		}
		if strings.HasPrefix(line, "<") {
			return ParseStatus(line)
		}
	}
}

// Home runs a homing cycle. An empty axes string homes every axis, otherwise
// it names the axes to home, e.g. "XZ".
func (m *MCU) Home(axes string) error {
	cmd := "$H"
	if axes != "" {
		var b strings.Builder
		b.WriteString("G28")
		for _, c := range strings.ToUpper(axes) {
			b.WriteString(" ")
			b.WriteRune(c)
		}
		cmd = b.String()
	}
	_, err := m.SendTimeout(cmd, DefaultHomeTimeout)
	return err
}

// Unlock clears an alarm
func (m *MCU) Unlock() error {
	_, err := m.Send("$X")
	return err
}

// readLine returns the next complete line, without its terminator
func (m *MCU) readLine(deadline time.Time) (string, error) {
	for {
		if i := bytes.IndexByte(m.pending, '\n'); i >= 0 {
			line := strings.TrimRight(string(m.pending[:i]), "\r")
			m.pending = m.pending[i+1:]
			if line == "" {
				continue
			}
			return line, nil
		}
		if time.Now().After(deadline) {
			return "", ErrTimeout
		}

		n, err := m.port.Read(m.buf[:])
		m.pending = append(m.pending, m.buf[:n]...)
		// Serial backends report a read timeout as EOF
		if err != nil && err != io.EOF {
			return "", err
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

// ParseStatus parses a "<State|MPos:x,y,z>" report
func ParseStatus(line string) (Status, error) {
	var st Status
	if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, ">") {
		return st, ErrBadStatus
	}
	fields := strings.Split(line[1:len(line)-1], "|")
	st.State = fields[0]
	for _, f := range fields[1:] {
		name, value, ok := strings.Cut(f, ":")
		if !ok || name != "MPos" {
			continue
		}
		coords := strings.Split(value, ",")
		if len(coords) != len(st.MPos) {
			return st, fmt.Errorf("%w: %q", ErrBadStatus, line)
		}
		for i, c := range coords {
			v, err := strconv.ParseFloat(c, 64)
			if err != nil {
				return st, fmt.Errorf("%w: %q: %v", ErrBadStatus, line, err)
			}
			st.MPos[i] = v
		}
	}
	return st, nil
}
