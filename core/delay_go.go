//go:build !tinygo

package core

import "time"

// busyWaitMicros spins on the monotonic clock (regular Go implementation)
func busyWaitMicros(n uint32) {
	deadline := time.Now().Add(time.Duration(n) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}
