//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/mcp23017"

	"gohome/core"
	"gohome/standalone"
	"gohome/standalone/config"
	"gohome/standalone/planner"
)

var (
	// Debug counters
	linesReceived uint32
	usbErrors     uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitClock()
	InitDebugUART()

	gpioDriver := NewRPGPIODriver()
	core.SetGPIODriver(gpioDriver)

	cfg := config.DefaultCartesianConfig()
	manager, err := standalone.NewManagerWithConfig(cfg)
	if err != nil {
		fatal(err)
	}

	var expander *mcp23017.Device
	if cfg.Expander != nil {
		expander, err = openExpander(cfg.Expander.I2CAddress)
		if err != nil {
			fatal(err)
		}
	}

	hw, err := standalone.BoardHardware(cfg, gpioDriver, expander, planner.ClockTicker(GetHardwareTime))
	if err != nil {
		fatal(err)
	}
	stepping, err := NewSIOSteppingPort(config.StepperPins(cfg), config.IdleStepLevels(cfg), core.GlobalStepCounter())
	if err != nil {
		fatal(err)
	}
	hw.Stepping = stepping

	if err := manager.Initialize(hw); err != nil {
		fatal(err)
	}
	if err := manager.Start(); err != nil {
		fatal(err)
	}

	for {
		// Process USB input
		for USBAvailable() > 0 {
			b, err := USBRead()
			if err != nil {
				usbErrors++
				break
			}
			if b == '\n' {
				linesReceived++
			}
			if err := manager.ProcessByte(b); err != nil {
				DebugPrintln("[CMD] " + err.Error())
			}
		}

		// Send any pending output
		if output := manager.GetOutput(); len(output) > 0 {
			if _, err := USBWriteBytes(output); err != nil {
				usbErrors++
			}
		}

		UpdateSystemTime()
		core.ProcessTimers()

		// Yield to the USB stack
		time.Sleep(10 * time.Microsecond)
	}
}

// fatal reports err on the debug UART and blinks the LED forever
func fatal(err error) {
	DebugPrintln("[FATAL] " + err.Error())
	core.DumpTimingRing()

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
