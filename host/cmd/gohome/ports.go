package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gohome/host/serial"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.ListPorts()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(ports) == 0 {
			fmt.Fprintln(out, "No serial ports found")
			return nil
		}
		for _, p := range ports {
			mark := " "
			if p.Board() {
				mark = "*"
			}
			if p.USB {
				fmt.Fprintf(out, "%s %-20s %s:%s %s %s\n", mark, p.Name, p.VID, p.PID, p.Product, p.Serial)
			} else {
				fmt.Fprintf(out, "%s %s\n", mark, p.Name)
			}
		}
		return nil
	},
}
