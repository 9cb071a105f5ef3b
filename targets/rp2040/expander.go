//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers/mcp23017"

	"gohome/core"
)

// Expander bus: I2C1 on SDA=GP6, SCL=GP7. I2C0's default pins carry the
// Z step and direction lines.
const expanderFrequency = 400 * machine.KHz

// openExpander configures I2C1 and probes the MCP23017 at addr
func openExpander(addr uint8) (*mcp23017.Device, error) {
	bus := machine.I2C1
	err := bus.Configure(machine.I2CConfig{
		Frequency: expanderFrequency,
		SDA:       machine.GPIO6,
		SCL:       machine.GPIO7,
	})
	if err != nil {
		return nil, err
	}
	return core.OpenExpander(bus, addr)
}
