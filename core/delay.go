package core

// Delay provides blocking busy-wait pauses. Implementations must not yield
// to other work for short durations: step timing depends on it.
type Delay interface {
	// Microseconds blocks for n microseconds
	Microseconds(n uint32)

	// Milliseconds blocks for n milliseconds
	Milliseconds(n uint32)
}

// BusyDelay is the platform delay used by firmware builds
type BusyDelay struct{}

// Microseconds busy-waits for n microseconds
func (BusyDelay) Microseconds(n uint32) {
	if n == 0 {
		return
	}
	busyWaitMicros(n)
}

// Milliseconds busy-waits for n milliseconds, one millisecond at a time so
// that long waits never fall back to a scheduler sleep
func (BusyDelay) Milliseconds(n uint32) {
	for i := uint32(0); i < n; i++ {
		busyWaitMicros(1000)
	}
}
