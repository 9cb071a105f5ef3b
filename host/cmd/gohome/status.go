package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gohome/host/mcu"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the machine state and position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := connect()
		if err != nil {
			return err
		}
		defer m.Close()

		st, err := m.Status()
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), st)
		return nil
	},
}

func printStatus(out io.Writer, st mcu.Status) {
	fmt.Fprintf(out, "%s X:%.3f Y:%.3f Z:%.3f\n", st.State, st.MPos[0], st.MPos[1], st.MPos[2])
}
