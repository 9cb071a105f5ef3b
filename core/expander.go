// Limit switches and driver control lines on an MCP23017 I2C port expander.
// Boards that run out of native GPIO move these slow signals to the expander
// and keep the step/direction lines on the MCU.
package core

import (
	"errors"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/mcp23017"
)

// ErrExpanderPin is returned for an expander pin outside 0-15
var ErrExpanderPin = errors.New("expander pin out of range")

// OpenExpander probes the MCP23017 at addr on bus
func OpenExpander(bus drivers.I2C, addr uint8) (*mcp23017.Device, error) {
	dev, err := mcp23017.NewI2C(bus, addr)
	if err != nil {
		return nil, errors.New("expander 0x" + hexByte(addr) + ": " + err.Error())
	}
	return dev, nil
}

// ExpanderLimitPort reads limit switches wired to expander pins. Every Read
// fetches both expander ports in one bus transaction.
type ExpanderLimitPort struct {
	dev    *mcp23017.Device
	pins   [AxisCount]int
	pullUp bool
	axes   AxisSet
	last   PortValue
	err    error
}

// NewExpanderLimitPort maps each axis to an expander pin number
func NewExpanderLimitPort(dev *mcp23017.Device, pins map[Axis]int, pullUp bool) (*ExpanderLimitPort, error) {
	p := &ExpanderLimitPort{dev: dev, pullUp: pullUp, last: LimitMask}
	for a, pin := range pins {
		if pin < 0 || pin >= mcp23017.PinCount {
			return nil, ErrExpanderPin
		}
		p.pins[a] = pin
		p.axes = p.axes.Add(a)
	}
	return p, nil
}

// Configure sets the limit pins as inputs
func (p *ExpanderLimitPort) Configure() error {
	mode := mcp23017.Input
	if p.pullUp {
		mode |= mcp23017.Pullup
	}
	for _, a := range Axes {
		if !p.axes.Has(a) {
			continue
		}
		if err := p.dev.Pin(p.pins[a]).SetMode(mode); err != nil {
			return err
		}
	}
	return nil
}

// Axes returns the axes that have a limit pin
func (p *ExpanderLimitPort) Axes() AxisSet {
	return p.axes
}

// Read samples the limit pins. A failed bus transaction repeats the last good
// sample and is reported through Err.
func (p *ExpanderLimitPort) Read() PortValue {
	pins, err := p.dev.GetPins()
	if err != nil {
		p.err = err
		RecordTiming(EvtPortError, p.axes, 0, 2)
		return p.last
	}
	v := LimitMask
	for _, a := range Axes {
		if p.axes.Has(a) && !pins.Get(p.pins[a]) {
			v = v.WithLimit(a, false)
		}
	}
	p.last = v
	return v
}

// Err returns the last bus error seen by Read
func (p *ExpanderLimitPort) Err() error {
	return p.err
}

// ExpanderControlPort drives the stepper enable and activity outputs from
// expander pins
type ExpanderControlPort struct {
	dev          *mcp23017.Device
	enable       int // -1 when the enable line is on the MCU
	invertEnable bool
	activity     int // -1 when absent
	enabled      bool
	active       bool
	err          error
}

// NewExpanderControlPort builds a control port. Pass -1 for an output the
// expander does not carry.
func NewExpanderControlPort(dev *mcp23017.Device, enable int, invertEnable bool, activity int) (*ExpanderControlPort, error) {
	if enable >= mcp23017.PinCount || activity >= mcp23017.PinCount {
		return nil, ErrExpanderPin
	}
	if enable < 0 {
		enable = -1
	}
	if activity < 0 {
		activity = -1
	}
	return &ExpanderControlPort{
		dev:          dev,
		enable:       enable,
		invertEnable: invertEnable,
		activity:     activity,
	}, nil
}

// Configure sets the outputs and leaves the drivers disabled
func (p *ExpanderControlPort) Configure() error {
	if p.enable >= 0 {
		if err := p.dev.Pin(p.enable).SetMode(mcp23017.Output); err != nil {
			return err
		}
	}
	if p.activity >= 0 {
		if err := p.dev.Pin(p.activity).SetMode(mcp23017.Output); err != nil {
			return err
		}
	}
	p.SetEnable(false)
	p.SetActivity(false)
	return p.err
}

// SetEnable energizes (true) or releases (false) the stepper drivers
func (p *ExpanderControlPort) SetEnable(on bool) {
	p.enabled = on
	if p.enable < 0 {
		return
	}
	if err := p.dev.Pin(p.enable).Set(on != p.invertEnable); err != nil {
		p.err = err
		RecordTiming(EvtPortError, 0, uint32(p.enable), 3)
	}
}

// SetActivity switches the activity indicator
func (p *ExpanderControlPort) SetActivity(on bool) {
	p.active = on
	if p.activity < 0 {
		return
	}
	if err := p.dev.Pin(p.activity).Set(on); err != nil {
		p.err = err
		RecordTiming(EvtPortError, 0, uint32(p.activity), 3)
	}
}

// Enabled reports the last enable state written
func (p *ExpanderControlPort) Enabled() bool {
	return p.enabled
}

// Active reports the last activity state written
func (p *ExpanderControlPort) Active() bool {
	return p.active
}

// Err returns the last bus error
func (p *ExpanderControlPort) Err() error {
	return p.err
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}
