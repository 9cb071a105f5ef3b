package mcu

import (
	"errors"
	"io"
	"sync"

	"gohome/standalone"
	"gohome/standalone/config"
	"gohome/standalone/planner"
	"gohome/standalone/sim"
)

var errPortClosed = errors.New("port closed")

// SimPort is an in-memory serial port wired straight into a firmware
// manager. Bytes written are fed to the manager as the board would receive
// them; its output is returned by Read.
type SimPort struct {
	mu     sync.Mutex
	mgr    *standalone.Manager
	out    []byte
	closed bool
}

// NewSimPort connects a port to mgr, which must be initialized
func NewSimPort(mgr *standalone.Manager) *SimPort {
	p := &SimPort{mgr: mgr}
	p.out = append(p.out, mgr.GetOutput()...)
	return p
}

// Simulate starts a manager for cfg on a simulated machine whose carriages
// sit distance steps from their switches, and returns a port to it
func Simulate(cfg *config.MachineConfig, distance int32) (*SimPort, *sim.Machine, error) {
	mgr, err := standalone.NewManagerWithConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	m := sim.New(config.HomingSettings(cfg), distance)
	hw := standalone.Hardware{Machine: m.HomingMachine(), Ticker: planner.VirtualTicker{}}
	if err := mgr.Initialize(hw); err != nil {
		return nil, nil, err
	}
	if err := mgr.Start(); err != nil {
		return nil, nil, err
	}
	return NewSimPort(mgr), m, nil
}

// Write feeds b to the manager
func (p *SimPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errPortClosed
	}
	for _, c := range b {
		p.mgr.ProcessByte(c)
	}
	p.out = append(p.out, p.mgr.GetOutput()...)
	return len(b), nil
}

// Read returns pending manager output, or io.EOF when there is none
func (p *SimPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errPortClosed
	}
	if len(p.out) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.out)
	p.out = p.out[n:]
	return n, nil
}

// Close stops the manager
func (p *SimPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.mgr.Stop()
	return nil
}

// Flush discards unread output
func (p *SimPort) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = p.out[:0]
	return nil
}
