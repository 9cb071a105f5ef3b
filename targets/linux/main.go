//go:build linux && !tinygo

// Command gohome-linux runs the homing firmware on a Linux single-board
// computer, driving the step, direction and enable lines from the board's
// GPIO header. Commands are read from stdin, or from a serial device when
// --port is given.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"tinygo.org/x/drivers/mcp23017"

	"gohome/core"
	"gohome/host/serial"
	"gohome/standalone"
	"gohome/standalone/config"
	"gohome/standalone/planner"
)

// GPIO backends
const (
	gpioPeriph = "periph"
	gpioRPIO   = "rpio"
)

var (
	opts = struct {
		config string
		gpio   string
		i2c    string
		port   string
		baud   int
		debug  bool
	}{}

	rootCmd = &cobra.Command{
		Use:           "gohome-linux",
		Short:         "Run the homing firmware on a Linux board's GPIO header",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.config, "config", "c", "", "Machine config file (.json, .yaml). Default: built-in cartesian config")
	flags.StringVar(&opts.gpio, "gpio", gpioRPIO, "GPIO backend: rpio or periph")
	flags.StringVar(&opts.i2c, "i2c", "", "I2C bus for the expander. Default: first bus")
	flags.StringVarP(&opts.port, "port", "p", "", "Serial device to serve. Default: stdin/stdout")
	flags.IntVarP(&opts.baud, "baud", "b", 115200, "Baud rate for --port")
	flags.BoolVar(&opts.debug, "debug", false, "Log firmware debug output to stderr")
}

func run(cmd *cobra.Command, args []string) error {
	if opts.debug {
		logger := log.New(os.Stderr, "", log.Lmicroseconds)
		core.SetDebugWriter(func(s string) { logger.Println(s) })
		core.SetDebugEnabled(true)
	}

	cfg := config.DefaultCartesianConfig()
	if opts.config != "" {
		var err error
		if cfg, err = config.LoadFile(opts.config); err != nil {
			return err
		}
	}
	mgr, err := standalone.NewManagerWithConfig(cfg)
	if err != nil {
		return err
	}

	driver, err := openGPIO(opts.gpio)
	if err != nil {
		return err
	}
	if c, ok := driver.(io.Closer); ok {
		defer c.Close()
	}

	var expander *mcp23017.Device
	if cfg.Expander != nil {
		dev, closeBus, err := openExpander(opts.i2c, cfg.Expander.I2CAddress)
		if err != nil {
			return err
		}
		defer closeBus()
		expander = dev
	}

	clock := monotonicMicros()
	hw, err := standalone.BoardHardware(cfg, driver, expander, planner.ClockTicker(clock))
	if err != nil {
		return err
	}
	if err := mgr.Initialize(hw); err != nil {
		return err
	}
	if err := mgr.Start(); err != nil {
		return err
	}
	defer mgr.Stop()

	if opts.port == "" {
		return serve(mgr, clock, os.Stdin, os.Stdout, true)
	}
	scfg := serial.DefaultConfig(opts.port)
	scfg.Baud = opts.baud
	port, err := serial.Open(scfg)
	if err != nil {
		return err
	}
	defer port.Close()
	// Serial reads report their timeout as io.EOF
	return serve(mgr, clock, port, port, false)
}

func openGPIO(backend string) (core.GPIODriver, error) {
	switch backend {
	case gpioRPIO:
		return NewRPIOGPIODriver()
	case gpioPeriph:
		return NewPeriphGPIODriver()
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", backend)
	}
}

// monotonicMicros returns a microsecond clock starting at zero
func monotonicMicros() func() uint32 {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Microseconds())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
