//go:build rp2040 || rp2350

package main

import (
	"machine"

	"gohome/core"
)

var debugEnabled bool

// InitDebugUART sets up the debug UART at 115200 baud and routes core debug
// output to it
func InitDebugUART() {
	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       debugTX,
		RX:       debugRX,
	})
	if err != nil {
		debugEnabled = false
		return
	}

	debugEnabled = true
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(true)

	DebugPrintln("=== gohome " + mcuName + " debug UART ===")
}

// DebugPrint writes a string to the debug UART (no newline)
func DebugPrint(s string) {
	if !debugEnabled {
		return
	}
	debugUART.Write([]byte(s))
}

// DebugPrintln writes a string to the debug UART with newline
func DebugPrintln(s string) {
	if !debugEnabled {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
