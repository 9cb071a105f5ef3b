//go:build rp2040 || rp2350

package main

import "gohome/core"

// InitClock waits for the timer to settle after TinyGo's clock setup and
// publishes its first value
func InitClock() {
	// Read and discard a few values to ensure we get stable readings
	_ = GetHardwareTime()
	_ = GetHardwareTime()
	UpdateSystemTime()
}

// UpdateSystemTime updates the core timer with hardware time
// Called from the main loop and by the planner while it waits
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
