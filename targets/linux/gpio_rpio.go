//go:build linux && !tinygo

package main

import (
	"github.com/stianeikeland/go-rpio/v4"

	"gohome/core"
)

// maxRPIOPin is the highest BCM GPIO number on the Pi's SoC
const maxRPIOPin = 53

// RPIOGPIODriver implements core.GPIODriver by mapping the GPIO registers
// through go-rpio. It is faster than the periph.io path, which matters for
// the step pulse width.
type RPIOGPIODriver struct{}

// NewRPIOGPIODriver maps the GPIO registers
func NewRPIOGPIODriver() (*RPIOGPIODriver, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}
	return &RPIOGPIODriver{}, nil
}

// Close unmaps the GPIO registers
func (d *RPIOGPIODriver) Close() error {
	return rpio.Close()
}

func rpioPin(pin core.GPIOPin) (rpio.Pin, error) {
	if pin > maxRPIOPin {
		return 0, core.ErrPinRange
	}
	return rpio.Pin(pin), nil
}

// ConfigureOutput configures a pin as an output, driven low
func (d *RPIOGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	p, err := rpioPin(pin)
	if err != nil {
		return err
	}
	p.Output()
	p.Low()
	return nil
}

// ConfigureInputPullUp configures a pin as an input with pull-up
func (d *RPIOGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	p, err := rpioPin(pin)
	if err != nil {
		return err
	}
	p.Input()
	p.PullUp()
	return nil
}

// ConfigureInputPullDown configures a pin as an input with pull-down
func (d *RPIOGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	p, err := rpioPin(pin)
	if err != nil {
		return err
	}
	p.Input()
	p.PullDown()
	return nil
}

// SetPin sets a pin high (true) or low (false)
func (d *RPIOGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	p, err := rpioPin(pin)
	if err != nil {
		return err
	}
	if value {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

// GetPin reads the current pin state
func (d *RPIOGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	p, err := rpioPin(pin)
	if err != nil {
		return false, err
	}
	return p.Read() == rpio.High, nil
}

// ReadPin reads a pin, treating errors as low
func (d *RPIOGPIODriver) ReadPin(pin core.GPIOPin) bool {
	v, _ := d.GetPin(pin)
	return v
}
