package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gohome/host/mcu"
	"gohome/host/serial"
)

var (
	connOpts = struct {
		device  string
		baud    int
		backend string
		timeout time.Duration
	}{}

	rootCmd = &cobra.Command{
		Use:           "gohome",
		Short:         "Host tool for the gohome homing firmware",
		Long:          "Send commands to a board running the gohome firmware, or run the firmware against a simulated machine.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&connOpts.device, "device", "d", "", "Serial device path. Default: first RP2040/RP2350 board found")
	flags.IntVarP(&connOpts.baud, "baud", "b", 115200, "Baud rate (ignored for USB CDC)")
	flags.StringVar(&connOpts.backend, "backend", serial.BackendTarm, "Serial backend: tarm or bugst")
	flags.DurationVar(&connOpts.timeout, "timeout", mcu.DefaultTimeout, "Reply timeout for ordinary commands")

	rootCmd.AddCommand(portsCmd, sendCmd, homeCmd, statusCmd, simulateCmd)
}

// connect opens the board named by the connection flags
func connect() (*mcu.MCU, error) {
	device := connOpts.device
	if device == "" {
		found, err := serial.FindBoard()
		if err != nil {
			return nil, err
		}
		device = found
	}

	cfg := serial.DefaultConfig(device)
	cfg.Baud = connOpts.baud
	cfg.Backend = connOpts.backend

	m := mcu.NewMCU()
	m.Timeout = connOpts.timeout
	if err := m.ConnectWithConfig(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
