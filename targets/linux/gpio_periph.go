//go:build linux && !tinygo

package main

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"gohome/core"
)

// PeriphGPIODriver implements core.GPIODriver on the periph.io host drivers.
// Pin numbers are BCM numbers.
type PeriphGPIODriver struct {
	pins map[core.GPIOPin]gpio.PinIO
}

// NewPeriphGPIODriver loads the periph.io host drivers
func NewPeriphGPIODriver() (*PeriphGPIODriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: host init failed: %w", err)
	}
	return &PeriphGPIODriver{pins: make(map[core.GPIOPin]gpio.PinIO)}, nil
}

func (d *PeriphGPIODriver) pin(pin core.GPIOPin) (gpio.PinIO, error) {
	if p, ok := d.pins[pin]; ok {
		return p, nil
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, fmt.Errorf("gpio: no pin GPIO%d: %w", pin, core.ErrPinRange)
	}
	d.pins[pin] = p
	return p, nil
}

// ConfigureOutput configures a pin as an output, driven low
func (d *PeriphGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	p, err := d.pin(pin)
	if err != nil {
		return err
	}
	return p.Out(gpio.Low)
}

// ConfigureInputPullUp configures a pin as an input with pull-up
func (d *PeriphGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	p, err := d.pin(pin)
	if err != nil {
		return err
	}
	return p.In(gpio.PullUp, gpio.NoEdge)
}

// ConfigureInputPullDown configures a pin as an input with pull-down
func (d *PeriphGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	p, err := d.pin(pin)
	if err != nil {
		return err
	}
	return p.In(gpio.PullDown, gpio.NoEdge)
}

// SetPin sets a pin high (true) or low (false)
func (d *PeriphGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	p, err := d.pin(pin)
	if err != nil {
		return err
	}
	return p.Out(gpio.Level(value))
}

// GetPin reads the current pin state
func (d *PeriphGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	p, err := d.pin(pin)
	if err != nil {
		return false, err
	}
	return bool(p.Read()), nil
}

// ReadPin reads a pin, treating errors as low
func (d *PeriphGPIODriver) ReadPin(pin core.GPIOPin) bool {
	v, _ := d.GetPin(pin)
	return v
}
