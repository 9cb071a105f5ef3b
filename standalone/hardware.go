package standalone

import (
	"tinygo.org/x/drivers/mcp23017"

	"gohome/core"
	"gohome/standalone/config"
	"gohome/standalone/homing"
	"gohome/standalone/planner"
)

// Hardware is the board the manager drives. Planner and Position in the
// embedded machine are filled in by the manager when left nil.
type Hardware struct {
	homing.Machine
	Ticker planner.Ticker
}

type configurer interface {
	Configure() error
}

// BoardHardware builds the ports described by cfg. Step and direction lines
// are always on driver; limit switches and control outputs routed to the
// expander use dev, which may be nil when cfg has no expander.
func BoardHardware(cfg *config.MachineConfig, driver core.GPIODriver, dev *mcp23017.Device, ticker planner.Ticker) (Hardware, error) {
	counter := core.GlobalStepCounter()
	hw := Hardware{Ticker: ticker}
	hw.Counter = counter
	hw.Delay = core.BusyDelay{}
	hw.Stepping = core.NewGPIOSteppingPort(driver, config.StepperPins(cfg), config.IdleStepLevels(cfg), counter)

	var limits []homing.InputPort
	if pins := config.LimitPins(cfg); len(pins) > 0 {
		limits = append(limits, core.NewGPIOLimitPort(driver, pins))
	}
	if pins := config.ExpanderLimitPins(cfg); len(pins) > 0 {
		if dev == nil {
			return hw, errNoExpander
		}
		port, err := core.NewExpanderLimitPort(dev, pins, config.ExpanderPullUp(cfg))
		if err != nil {
			return hw, err
		}
		limits = append(limits, port)
	}
	hw.Limits = limitPorts(limits)

	control, err := controlPort(cfg, driver, dev)
	if err != nil {
		return hw, err
	}
	hw.Control = control
	return hw, nil
}

func controlPort(cfg *config.MachineConfig, driver core.GPIODriver, dev *mcp23017.Device) (homing.ControlPort, error) {
	x := cfg.Expander
	if x == nil || (x.EnablePin == nil && x.ActivityPin == nil) {
		return gpioControl(cfg, driver, true), nil
	}
	if dev == nil {
		return nil, errNoExpander
	}

	enable, activity := -1, -1
	if x.EnablePin != nil {
		enable = *x.EnablePin
	}
	if x.ActivityPin != nil {
		activity = *x.ActivityPin
	}
	ext, err := core.NewExpanderControlPort(dev, enable, cfg.InvertEnable, activity)
	if err != nil {
		return nil, err
	}
	if enable >= 0 && (activity >= 0 || cfg.ActivityPin == "") {
		return ext, nil
	}

	// One line on each side
	if enable < 0 {
		return splitControl{enable: gpioControl(cfg, driver, false), activity: ext}, nil
	}
	pin, _ := core.LookupPin(cfg.ActivityPin)
	return splitControl{enable: ext, activity: &gpioIndicator{driver: driver, pin: pin}}, nil
}

func gpioControl(cfg *config.MachineConfig, driver core.GPIODriver, withActivity bool) *core.GPIOControlPort {
	enable, _ := core.LookupPin(cfg.EnablePin)
	var activity *core.GPIOPin
	if withActivity && cfg.ActivityPin != "" {
		pin, _ := core.LookupPin(cfg.ActivityPin)
		activity = &pin
	}
	return core.NewGPIOControlPort(driver, enable, cfg.InvertEnable, activity)
}

// limitPorts reads several limit ports as one. Every port reads high on
// the axes it does not carry.
type limitPorts []homing.InputPort

func (l limitPorts) Read() core.PortValue {
	v := core.LimitMask
	for _, p := range l {
		v &= p.Read() | ^core.LimitMask
	}
	return v
}

func (l limitPorts) Configure() error {
	for _, p := range l {
		if c, ok := p.(configurer); ok {
			if err := c.Configure(); err != nil {
				return err
			}
		}
	}
	return nil
}

// gpioIndicator is an activity output on its own GPIO pin
type gpioIndicator struct {
	driver core.GPIODriver
	pin    core.GPIOPin
}

func (g *gpioIndicator) Configure() error {
	if err := g.driver.ConfigureOutput(g.pin); err != nil {
		return err
	}
	return g.driver.SetPin(g.pin, false)
}

func (g *gpioIndicator) SetActivity(on bool) {
	if err := g.driver.SetPin(g.pin, on); err != nil {
		core.RecordTiming(core.EvtPortError, 0, uint32(g.pin), 1)
	}
}

// splitControl drives the enable line and the indicator from two ports
type splitControl struct {
	enable   interface{ SetEnable(on bool) }
	activity interface{ SetActivity(on bool) }
}

func (s splitControl) SetEnable(on bool)   { s.enable.SetEnable(on) }
func (s splitControl) SetActivity(on bool) { s.activity.SetActivity(on) }

func (s splitControl) Configure() error {
	for _, p := range []interface{}{s.enable, s.activity} {
		if c, ok := p.(configurer); ok {
			if err := c.Configure(); err != nil {
				return err
			}
		}
	}
	return nil
}

// configure prepares every port of hw that needs it
func (hw Hardware) configure() error {
	for _, p := range []interface{}{hw.Stepping, hw.Limits, hw.Control} {
		if c, ok := p.(configurer); ok {
			if err := c.Configure(); err != nil {
				return err
			}
		}
	}
	return nil
}
