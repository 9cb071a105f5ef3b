package core

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"tinygo.org/x/drivers/mcp23017"
	"tinygo.org/x/drivers/tester"
)

// MCP23017 register addresses, port A (port B is +1)
const (
	regIODIR = 0x00
	regGPPU  = 0x0C
	regGPIO  = 0x12
)

func newTestExpander(c *qt.C) (*tester.I2CDevice8, *mcp23017.Device) {
	bus := tester.NewI2CBus(c)
	fdev := bus.NewDevice(0x20)
	// all inputs after reset
	fdev.Registers[regIODIR] = 0xff
	fdev.Registers[regIODIR+1] = 0xff
	dev, err := OpenExpander(bus, 0x20)
	c.Assert(err, qt.IsNil)
	return fdev, dev
}

func TestOpenExpanderBadAddress(t *testing.T) {
	c := qt.New(t)
	bus := tester.NewI2CBus(c)
	_, err := OpenExpander(bus, 0x40)
	c.Assert(err, qt.ErrorMatches, "expander 0x40: .*")
}

func TestExpanderLimitPortRead(t *testing.T) {
	c := qt.New(t)
	fdev, dev := newTestExpander(c)

	port, err := NewExpanderLimitPort(dev, map[Axis]int{AxisX: 0, AxisY: 1, AxisZ: 9}, true)
	c.Assert(err, qt.IsNil)
	c.Assert(port.Configure(), qt.IsNil)
	c.Assert(fdev.Registers[regGPPU], qt.Equals, uint8(0b0000_0011))
	c.Assert(fdev.Registers[regGPPU+1], qt.Equals, uint8(0b0000_0010))

	fdev.Registers[regGPIO] = 0b0000_0010   // X low, Y high
	fdev.Registers[regGPIO+1] = 0b0000_0010 // Z high
	v := port.Read()
	c.Assert(v.Limit(AxisX), qt.IsFalse)
	c.Assert(v.Limit(AxisY), qt.IsTrue)
	c.Assert(v.Limit(AxisZ), qt.IsTrue)
	// only limit lines are driven
	c.Assert(v&^LimitMask, qt.Equals, PortValue(0))

	fdev.Registers[regGPIO+1] = 0
	c.Assert(port.Read().Limit(AxisZ), qt.IsFalse)
}

func TestExpanderLimitPortBusError(t *testing.T) {
	c := qt.New(t)
	fdev, dev := newTestExpander(c)

	port, err := NewExpanderLimitPort(dev, map[Axis]int{AxisX: 3}, false)
	c.Assert(err, qt.IsNil)

	fdev.Registers[regGPIO] = 0
	first := port.Read()
	c.Assert(first.Limit(AxisX), qt.IsFalse)

	fdev.Err = errors.New("nack")
	fdev.Registers[regGPIO] = 0xff
	c.Assert(port.Read(), qt.Equals, first)
	c.Assert(port.Err(), qt.ErrorMatches, "nack")
}

func TestExpanderLimitPortPinRange(t *testing.T) {
	c := qt.New(t)
	_, dev := newTestExpander(c)

	_, err := NewExpanderLimitPort(dev, map[Axis]int{AxisX: 16}, true)
	c.Assert(err, qt.Equals, ErrExpanderPin)
}

func TestExpanderControlPort(t *testing.T) {
	c := qt.New(t)
	fdev, dev := newTestExpander(c)

	port, err := NewExpanderControlPort(dev, 8, true, 15)
	c.Assert(err, qt.IsNil)
	c.Assert(port.Configure(), qt.IsNil)

	// both pins are outputs on port B
	c.Assert(fdev.Registers[regIODIR+1], qt.Equals, uint8(0b0111_1110))
	// disabled: inverted enable line high, activity low
	c.Assert(fdev.Registers[regGPIO+1], qt.Equals, uint8(0b0000_0001))

	port.SetEnable(true)
	port.SetActivity(true)
	c.Assert(port.Err(), qt.IsNil)
	c.Assert(fdev.Registers[regGPIO+1], qt.Equals, uint8(0b1000_0000))
	c.Assert(port.Enabled(), qt.IsTrue)
	c.Assert(port.Active(), qt.IsTrue)
}

func TestExpanderControlPortNoActivity(t *testing.T) {
	c := qt.New(t)
	fdev, dev := newTestExpander(c)

	port, err := NewExpanderControlPort(dev, 0, false, -1)
	c.Assert(err, qt.IsNil)
	c.Assert(port.Configure(), qt.IsNil)

	port.SetActivity(true)
	port.SetEnable(true)
	c.Assert(fdev.Registers[regGPIO], qt.Equals, uint8(0b0000_0001))
	c.Assert(fdev.Registers[regGPIO+1], qt.Equals, uint8(0))
}

func TestExpanderControlPortActivityOnly(t *testing.T) {
	c := qt.New(t)
	fdev, dev := newTestExpander(c)

	port, err := NewExpanderControlPort(dev, -1, false, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(port.Configure(), qt.IsNil)

	port.SetEnable(true)
	c.Assert(fdev.Registers[regGPIO], qt.Equals, uint8(0))
	c.Assert(port.Enabled(), qt.IsTrue)

	port.SetActivity(true)
	c.Assert(fdev.Registers[regGPIO], qt.Equals, uint8(0b0000_1000))
}
