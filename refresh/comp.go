package refresh

import (
	"log"

	"github.com/sarchlab/refreshsim/sim"
)

// Comp hosts one CycleCounter in an event-driven simulation. It adapts the
// per-tick signal contract of the counter to method calls: a host arms the
// counter through Arm and polls the counter outputs between ticks. The
// component stops ticking while the counter is idle and resumes when armed.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	counter Counter

	pendingReset    bool
	pendingStart    bool
	pendingDuration uint64
	pendingBank     uint64
}

// Tick updates the state of the hosted counter.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// Arm requests the counter to start timing a refresh of the given bank for
// duration ticks. The request takes effect on the next tick. Arming is only
// legal while the counter is idle; an ill-timed request is flagged by the
// counter as a protocol violation and ignored.
func (c *Comp) Arm(duration, bank uint64) {
	c.Lock()
	c.pendingStart = true
	c.pendingDuration = duration
	c.pendingBank = bank
	c.Unlock()

	c.TickLater()
}

// Reset forces the counter back to its idle state on the next tick. It takes
// priority over a concurrently latched Arm request.
func (c *Comp) Reset() {
	c.Lock()
	c.pendingReset = true
	c.Unlock()

	c.TickLater()
}

// Busy returns true while the hosted counter is timing a refresh.
func (c *Comp) Busy() bool {
	return c.counter.Assigned()
}

// AssignedBank returns the bank the hosted counter is timing, or 0 when the
// counter is idle.
func (c *Comp) AssignedBank() uint64 {
	return c.counter.AssignedBank()
}

// Counter returns the hosted counter, mainly so that hosts can attach hooks
// or poll outputs that Comp does not re-export.
func (c *Comp) Counter() Counter {
	return c.counter
}

type middleware struct {
	*Comp
}

// Tick presents the latched inputs to the counter for exactly one tick and
// commits the counter state.
func (m *middleware) Tick() bool {
	m.Lock()
	in := Input{
		Reset:    m.pendingReset,
		Start:    m.pendingStart,
		Duration: m.pendingDuration,
		Bank:     m.pendingBank,
	}
	m.pendingReset = false
	m.pendingStart = false
	m.Unlock()

	busy := m.counter.Assigned()

	err := m.counter.Update(in)
	if err != nil {
		// Misuse by the host must not take down the simulation. The
		// violation has already been reported through the counter's hooks.
		log.Printf("%s: %s", m.Name(), err)
	}

	return busy || in.Start || in.Reset
}
