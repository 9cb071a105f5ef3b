package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gohome/host/mcu"
)

var sendCmd = &cobra.Command{
	Use:   "send [line...]",
	Short: "Send command lines",
	Long:  "Send each argument as one command line. Without arguments, lines are read from standard input.",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := connect()
		if err != nil {
			return err
		}
		defer m.Close()

		if len(args) > 0 {
			return sendLines(m, cmd.OutOrStdout(), args)
		}
		return sendStream(m, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// sendLines sends every line and stops at the first failure
func sendLines(m *mcu.MCU, out io.Writer, lines []string) error {
	for _, line := range lines {
		if err := sendOne(m, out, line); err != nil {
			return err
		}
	}
	return nil
}

// sendStream sends stdin line by line, reporting failures without stopping
func sendStream(m *mcu.MCU, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := sendOne(m, out, line); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
	}
	return scanner.Err()
}

func sendOne(m *mcu.MCU, out io.Writer, line string) error {
	if line == "?" {
		st, err := m.Status()
		if err != nil {
			return err
		}
		printStatus(out, st)
		return nil
	}

	report, err := m.SendTimeout(line, timeoutFor(line))
	for _, r := range report {
		fmt.Fprintln(out, r)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

// timeoutFor gives homing commands the long timeout
func timeoutFor(line string) time.Duration {
	upper := strings.ToUpper(strings.TrimSpace(line))
	if upper == "$H" || strings.HasPrefix(upper, "G28") {
		return mcu.DefaultHomeTimeout
	}
	return connOpts.timeout
}
