// Package planner holds the firmware's timed command queue. The only queued
// command this firmware knows is the dwell (G4); the queue exists so that the
// homing cycle has a real barrier to wait on before it takes over the ports.
package planner

import (
	"errors"

	"gohome/core"
)

// QueueSize is the number of blocks the queue holds
const QueueSize = 16

// MaxDwellMillis is the longest dwell. Block ends are compared across the
// 32-bit clock wrap, which holds for durations under 2^31 ticks.
const MaxDwellMillis = 30 * 60 * 1000

var (
	// ErrQueueFull is returned when a block is queued onto a full queue
	ErrQueueFull = errors.New("planner queue full")

	ErrDwellTooLong = errors.New("dwell longer than 30 minutes")
)

// Block is one queued command
type Block struct {
	Duration uint32 // timer ticks
	Line     uint32 // input line the block came from, for reporting
}

// Ticker moves the system clock forward while Synchronize waits. Firmware
// reads the hardware timer; simulations jump to the next wake time.
type Ticker interface {
	Tick()
}

// Planner executes queued blocks one after another on the core timer list
type Planner struct {
	ticker Ticker

	queue     []Block
	executing bool
	current   Block
	timer     core.Timer
	done      uint32 // blocks completed since creation
}

// NewPlanner creates a planner that advances time with ticker
func NewPlanner(ticker Ticker) *Planner {
	p := &Planner{
		ticker: ticker,
		queue:  make([]Block, 0, QueueSize),
	}
	p.timer.Handler = p.blockDone
	return p
}

// QueueDwell adds a pause of ms milliseconds
func (p *Planner) QueueDwell(ms uint32, line uint32) error {
	if ms > MaxDwellMillis {
		return ErrDwellTooLong
	}
	return p.Queue(Block{Duration: core.TimerFromMS(ms), Line: line})
}

// Queue adds a block and starts execution if the planner was idle
func (p *Planner) Queue(b Block) error {
	if len(p.queue) >= QueueSize {
		return ErrQueueFull
	}
	p.queue = append(p.queue, b)

	if !p.executing {
		p.executeNext()
	}
	return nil
}

// executeNext starts the next block in the queue
func (p *Planner) executeNext() {
	if len(p.queue) == 0 {
		p.executing = false
		return
	}

	p.current = p.queue[0]
	p.queue = p.queue[1:]
	p.executing = true

	p.timer.WakeTime = core.GetTime() + p.current.Duration
	core.RecordTiming(core.EvtDwellQueue, 0, p.timer.WakeTime, p.current.Line)
	core.ScheduleTimer(&p.timer)
}

func (p *Planner) blockDone(t *core.Timer) uint8 {
	p.done++
	p.executeNext()
	return core.SF_DONE
}

// Synchronize blocks until every queued block has completed
func (p *Planner) Synchronize() {
	for !p.IsIdle() {
		p.ticker.Tick()
		core.ProcessTimers()
	}
}

// IsIdle returns true if nothing is queued or executing
func (p *Planner) IsIdle() bool {
	return !p.executing && len(p.queue) == 0
}

// Pending returns the number of blocks not yet completed
func (p *Planner) Pending() int {
	n := len(p.queue)
	if p.executing {
		n++
	}
	return n
}

// Completed returns the number of blocks finished since creation
func (p *Planner) Completed() uint32 {
	return p.done
}

// ClearQueue drops every queued block and cancels the one executing
func (p *Planner) ClearQueue() {
	core.CancelTimer(&p.timer)
	p.queue = p.queue[:0]
	p.executing = false
}

// VirtualTicker jumps the system clock straight to the next timer. Used by
// tests and the host simulation, where nothing else advances time.
type VirtualTicker struct{}

// Tick implements Ticker
func (VirtualTicker) Tick() {
	if wake, ok := core.NextWakeTime(); ok {
		core.SetTime(wake)
	}
}

// ClockTicker publishes a free-running microsecond source as the system
// clock, for targets that expose their hardware timer as a function
type ClockTicker func() uint32

// Tick implements Ticker
func (f ClockTicker) Tick() {
	core.SetTime(f())
}
