package core

// StepperPins are the step and direction outputs of one axis
type StepperPins struct {
	Step GPIOPin
	Dir  GPIOPin
}

// GPIOSteppingPort presents the per-axis step/direction pins as one
// stepping port. Writes only touch the pins whose bit changed.
type GPIOSteppingPort struct {
	driver  GPIODriver
	pins    [AxisCount]StepperPins
	axes    AxisSet
	idle    PortValue // wire level of each step line while not stepping
	value   PortValue // output latch
	counter *StepCounter
	err     error
}

// NewGPIOSteppingPort builds a stepping port over driver. idle holds the
// wire level of step lines between pulses (the step invert mask); a change
// of a step line away from idle counts as one step on counter.
func NewGPIOSteppingPort(driver GPIODriver, pins map[Axis]StepperPins, idle PortValue, counter *StepCounter) *GPIOSteppingPort {
	p := &GPIOSteppingPort{
		driver:  driver,
		idle:    idle & StepMask,
		counter: counter,
	}
	for a, sp := range pins {
		p.pins[a] = sp
		p.axes = p.axes.Add(a)
	}
	return p
}

// Configure sets every pin as an output and drives step lines to idle
func (p *GPIOSteppingPort) Configure() error {
	for _, a := range Axes {
		if !p.axes.Has(a) {
			continue
		}
		if err := p.driver.ConfigureOutput(p.pins[a].Step); err != nil {
			return err
		}
		if err := p.driver.ConfigureOutput(p.pins[a].Dir); err != nil {
			return err
		}
		if err := p.driver.SetPin(p.pins[a].Step, p.idle&StepBit(a) != 0); err != nil {
			return err
		}
		if err := p.driver.SetPin(p.pins[a].Dir, false); err != nil {
			return err
		}
	}
	p.value = p.idle
	return nil
}

// Axes returns the axes this port drives
func (p *GPIOSteppingPort) Axes() AxisSet {
	return p.axes
}

// Read returns the output latch
func (p *GPIOSteppingPort) Read() PortValue {
	return p.value
}

// Write drives every changed line of the axes this port owns
func (p *GPIOSteppingPort) Write(v PortValue) {
	changed := p.value ^ v
	for _, a := range Axes {
		if !p.axes.Has(a) {
			continue
		}
		if changed&DirBit(a) != 0 {
			p.set(p.pins[a].Dir, v.Dir(a))
		}
		if changed&StepBit(a) != 0 {
			p.set(p.pins[a].Step, v.Step(a))
		}
	}

	if p.counter != nil {
		wasActive := (p.value ^ p.idle) & StepMask
		nowActive := (v ^ p.idle) & StepMask
		p.counter.Count(nowActive &^ wasActive & p.axes.StepBits())
	}
	p.value = v
}

// Err returns the last driver error seen by Write
func (p *GPIOSteppingPort) Err() error {
	return p.err
}

func (p *GPIOSteppingPort) set(pin GPIOPin, value bool) {
	if err := p.driver.SetPin(pin, value); err != nil {
		p.err = err
		RecordTiming(EvtPortError, p.axes, uint32(pin), 0)
	}
}

// LimitPin is the input of one axis limit switch
type LimitPin struct {
	Pin    GPIOPin
	PullUp bool
}

// GPIOLimitPort presents the per-axis limit switch pins as one input port
type GPIOLimitPort struct {
	driver GPIODriver
	pins   [AxisCount]LimitPin
	axes   AxisSet
}

// NewGPIOLimitPort builds a limit port over driver
func NewGPIOLimitPort(driver GPIODriver, pins map[Axis]LimitPin) *GPIOLimitPort {
	p := &GPIOLimitPort{driver: driver}
	for a, lp := range pins {
		p.pins[a] = lp
		p.axes = p.axes.Add(a)
	}
	return p
}

// Configure sets every limit pin as an input with its pull resistor
func (p *GPIOLimitPort) Configure() error {
	for _, a := range Axes {
		if !p.axes.Has(a) {
			continue
		}
		var err error
		if p.pins[a].PullUp {
			err = p.driver.ConfigureInputPullUp(p.pins[a].Pin)
		} else {
			err = p.driver.ConfigureInputPullDown(p.pins[a].Pin)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Axes returns the axes that have a limit pin
func (p *GPIOLimitPort) Axes() AxisSet {
	return p.axes
}

// Read samples every limit pin. Lines of axes without a pin read high.
func (p *GPIOLimitPort) Read() PortValue {
	v := LimitMask
	for _, a := range Axes {
		if p.axes.Has(a) && !p.driver.ReadPin(p.pins[a].Pin) {
			v = v.WithLimit(a, false)
		}
	}
	return v
}

// GPIOControlPort drives the stepper enable and activity indicator outputs
type GPIOControlPort struct {
	driver       GPIODriver
	enable       GPIOPin
	invertEnable bool
	activity     GPIOPin
	hasActivity  bool
	enabled      bool
	active       bool
	err          error
}

// NewGPIOControlPort builds a control port. activity may be nil for boards
// without an indicator output.
func NewGPIOControlPort(driver GPIODriver, enable GPIOPin, invertEnable bool, activity *GPIOPin) *GPIOControlPort {
	p := &GPIOControlPort{
		driver:       driver,
		enable:       enable,
		invertEnable: invertEnable,
	}
	if activity != nil {
		p.activity = *activity
		p.hasActivity = true
	}
	return p
}

// Configure sets the outputs and leaves the drivers disabled
func (p *GPIOControlPort) Configure() error {
	if err := p.driver.ConfigureOutput(p.enable); err != nil {
		return err
	}
	if p.hasActivity {
		if err := p.driver.ConfigureOutput(p.activity); err != nil {
			return err
		}
	}
	p.SetEnable(false)
	p.SetActivity(false)
	return p.err
}

// SetEnable energizes (true) or releases (false) the stepper drivers
func (p *GPIOControlPort) SetEnable(on bool) {
	p.enabled = on
	if err := p.driver.SetPin(p.enable, on != p.invertEnable); err != nil {
		p.err = err
		RecordTiming(EvtPortError, 0, uint32(p.enable), 1)
	}
}

// SetActivity switches the activity indicator
func (p *GPIOControlPort) SetActivity(on bool) {
	p.active = on
	if !p.hasActivity {
		return
	}
	if err := p.driver.SetPin(p.activity, on); err != nil {
		p.err = err
		RecordTiming(EvtPortError, 0, uint32(p.activity), 1)
	}
}

// Enabled reports the last enable state written
func (p *GPIOControlPort) Enabled() bool {
	return p.enabled
}

// Active reports the last activity state written
func (p *GPIOControlPort) Active() bool {
	return p.active
}

// Err returns the last driver error
func (p *GPIOControlPort) Err() error {
	return p.err
}
