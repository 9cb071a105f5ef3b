package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a homing event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Axes      uint8  // AxisSet involved in the event
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtHomeStart  = 1 // homing cycle entered
	EvtDirection  = 2 // direction lines written (v1=port value)
	EvtRetire     = 3 // axis left the active set (v1=iteration)
	EvtPhaseDone  = 4 // approach/leave finished (v1=pulses, v2=last gap)
	EvtTrailing   = 5 // trailing leave pulses emitted (v1=count)
	EvtFault      = 6 // pulse bound exceeded (v1=pulses)
	EvtHomeDone   = 7 // homing cycle left
	EvtPortError  = 8 // port driver reported an error
	EvtDwellQueue = 9 // planner dwell queued (v1=wake time)
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Timing capture ring buffer (non-blocking, for post-mortem)
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
	timingEnabled  bool = true
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output.
// Messages are synchronous, so leave this off while timing matters.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordTiming captures an event in the ring buffer. Never blocks.
func RecordTiming(eventType uint8, axes AxisSet, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Axes:      uint8(axes),
		Clock:     GetTime(),
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the recorded events from oldest to newest
func TimingEvents() []TimingEvent {
	events := make([]TimingEvent, 0, TimingRingSize)
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue
		}
		events = append(events, evt)
	}
	return events
}

// EventName returns the dump label of an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtHomeStart:
		return "HOME_START"
	case EvtDirection:
		return "DIRECTION"
	case EvtRetire:
		return "RETIRE"
	case EvtPhaseDone:
		return "PHASE_DONE"
	case EvtTrailing:
		return "TRAILING"
	case EvtFault:
		return "FAULT!"
	case EvtHomeDone:
		return "HOME_DONE"
	case EvtPortError:
		return "PORT_ERROR!"
	case EvtDwellQueue:
		return "DWELL"
	}
	return "UNKNOWN"
}

// DumpTimingRing writes the ring buffer through the debug writer regardless
// of the debug flag (call on alarm, after timing-critical code has stopped)
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	debugPrintln("[TIMING] Steps since counter reset: " + Utoa(GetTotalStepCount()))
	for _, evt := range TimingEvents() {
		debugPrintln("[TIMING] " + EventName(evt.EventType) +
			" axes=" + AxisSet(evt.Axes).String() +
			" clock=" + Utoa(evt.Clock) +
			" v1=" + Utoa(evt.Value1) +
			" v2=" + Utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}
