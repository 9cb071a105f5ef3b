//go:build tinygo

package core

import "sync/atomic"

// getSystemTicks returns the ticks last published by the target clock
func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// setSystemTicks publishes the hardware timer value
func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}
