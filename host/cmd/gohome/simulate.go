package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gohome/core"
	"gohome/host/mcu"
	"gohome/standalone/config"
	"gohome/standalone/sim"
)

var (
	simOpts = struct {
		config   string
		distance int32
		trace    bool
	}{}

	simulateCmd = &cobra.Command{
		Use:   "simulate [line...]",
		Short: "Run the firmware against a simulated machine",
		Long: "Run command lines (default \"$H\") through the firmware with every carriage " +
			"a given number of steps from its switch, then print what each axis did.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultCartesianConfig()
			if simOpts.config != "" {
				var err error
				if cfg, err = config.LoadFile(simOpts.config); err != nil {
					return err
				}
			}
			if len(args) == 0 {
				args = []string{"$H"}
			}
			return simulate(cmd.OutOrStdout(), cfg, simOpts.distance, args, simOpts.trace)
		},
	}
)

func init() {
	simulateCmd.Flags().StringVarP(&simOpts.config, "config", "c", "", "Machine config (.yaml, .yml or .json). Default: built-in cartesian")
	simulateCmd.Flags().Int32Var(&simOpts.distance, "distance", 400, "Steps between each carriage and its switch")
	simulateCmd.Flags().BoolVar(&simOpts.trace, "trace", false, "Print firmware debug output and the timing ring")
}

func simulate(out io.Writer, cfg *config.MachineConfig, distance int32, lines []string, trace bool) error {
	if trace {
		core.SetDebugWriter(func(s string) { fmt.Fprintln(out, "  "+s) })
		core.SetDebugEnabled(true)
		defer core.SetDebugWriter(func(string) {})
		defer core.SetDebugEnabled(false)
	}
	core.ClearTimingRing()

	port, machine, err := mcu.Simulate(cfg, distance)
	if err != nil {
		return err
	}
	m := mcu.NewMCU()
	if err := m.ConnectPort(port); err != nil {
		return err
	}
	defer m.Close()

	for _, l := range m.Banner {
		fmt.Fprintln(out, l)
	}
	for _, line := range lines {
		fmt.Fprintln(out, "> "+line)
		if err := sendOne(m, out, line); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
	}

	printSummary(out, machine)
	if trace {
		core.DumpTimingRing()
	}
	return nil
}

func printSummary(out io.Writer, machine *sim.Machine) {
	fmt.Fprintf(out, "\n%-4s %8s %8s %8s %8s\n", "axis", "pulses", "rest", "first", "last")
	for _, a := range core.Axes {
		pulses := machine.AxisPulses(a)
		gaps := sim.Gaps(pulses)
		first, last := uint32(0), uint32(0)
		if len(gaps) > 0 {
			first, last = gaps[0], gaps[len(gaps)-1]
		}
		fmt.Fprintf(out, "%-4s %8d %8d %7dus %7dus\n", a, len(pulses), machine.Axes[a].Pos, first, last)
	}
	fmt.Fprintf(out, "elapsed %.3fs\n", float64(machine.Clock)/1e6)
}
