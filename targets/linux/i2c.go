//go:build linux && !tinygo

package main

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"tinygo.org/x/drivers/mcp23017"

	"gohome/core"
)

// i2cBus adapts a periph.io bus to the tinygo drivers I2C interface
type i2cBus struct {
	bus i2c.Bus
}

func (b i2cBus) Tx(addr uint16, w, r []byte) error {
	return b.bus.Tx(addr, w, r)
}

func (b i2cBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.bus.Tx(uint16(addr), []byte{reg}, buf)
}

func (b i2cBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.bus.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

// openExpander opens the named I2C bus ("" for the first one) and probes
// the MCP23017 at addr. The returned closer releases the bus.
func openExpander(busName string, addr uint8) (*mcp23017.Device, func() error, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("i2c: %w", err)
	}
	dev, err := core.OpenExpander(i2cBus{bus: bus}, addr)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return dev, bus.Close, nil
}
