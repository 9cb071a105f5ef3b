package core

// Critical runs fn with interrupts masked. Keep fn short: a step pulse, not a
// whole homing pass, or USB and the system clock starve.
func Critical(fn func()) {
	state := disableInterrupts()
	fn()
	restoreInterrupts(state)
}
