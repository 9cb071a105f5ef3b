//go:build rp2350

package main

import (
	"machine"
	"runtime/volatile"
	"unsafe"
)

const mcuName = "rp2350"

// RP2350 Timer peripheral memory map
// NOTE: RP2350 timer is at a DIFFERENT address than RP2040!
// - RP2040 TIMER: 0x40054000
// - RP2350 TIMER0: 0x400B0000
const (
	timerBase     = 0x400B0000       // RP2350 TIMER0 base address
	timerTimeRawL = timerBase + 0x28 // Raw timer low (no latching)
)

var timerRawL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTimeRawL)))

// Debug UART on GPIO36 (TX) and GPIO37 (RX)
var (
	debugUART = machine.UART1
	debugTX   = machine.GPIO36
	debugRX   = machine.GPIO37
)

// GetHardwareTime reads the low 32 bits of the 1MHz hardware timer
func GetHardwareTime() uint32 {
	return timerRawL.Get()
}
