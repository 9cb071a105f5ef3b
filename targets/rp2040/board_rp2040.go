//go:build rp2040

package main

import (
	"machine"
	"runtime/volatile"
	"unsafe"
)

const mcuName = "rp2040"

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// Debug UART on GPIO16 (TX) and GPIO17 (RX), clear of the default
// step, direction and endstop pins
var (
	debugUART = machine.UART0
	debugTX   = machine.GPIO16
	debugRX   = machine.GPIO17
)

// GetHardwareTime reads the low 32 bits of the 1MHz hardware timer
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}
