//go:build tinygo

package core

import (
	"time"

	"tinygo.org/x/drivers/delay"
)

// busyWaitMicros counts CPU cycles; delay.Sleep only busy-waits below ~16ms,
// which BusyDelay never exceeds per call
func busyWaitMicros(n uint32) {
	delay.Sleep(time.Duration(n) * time.Microsecond)
}
