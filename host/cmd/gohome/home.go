package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var homeCmd = &cobra.Command{
	Use:   "home [axes]",
	Short: "Run a homing cycle",
	Long:  "Home every axis, or only the named ones (e.g. \"home xz\").",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		axes := ""
		if len(args) == 1 {
			axes = args[0]
			if strings.Trim(strings.ToLower(axes), "xyz") != "" {
				return fmt.Errorf("axes must be letters from xyz, got %q", axes)
			}
		}

		m, err := connect()
		if err != nil {
			return err
		}
		defer m.Close()

		if err := m.Home(axes); err != nil {
			return err
		}
		st, err := m.Status()
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), st)
		return nil
	},
}
