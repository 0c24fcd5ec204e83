// Package refresh provides the timing primitive that tracks the elapsed time
// of one per-bank refresh operation (tRFCpb) in an SDRAM-like memory
// subsystem. A refresh scheduler arms a counter for a bank and a duration;
// the counter counts down, reports busy/idle status, and raises a one-tick
// completion pulse.
package refresh

import (
	"github.com/sarchlab/refreshsim/sim"
)

// HookPosCounterArmed is a hook position that triggers when a counter starts
// timing a new refresh cycle. The hook item is a CycleStart.
var HookPosCounterArmed = &sim.HookPos{Name: "CounterArmed"}

// HookPosCounterDone is a hook position that triggers on the tick that
// carries the completion pulse of a refresh cycle. The hook item is a
// CycleEnd.
var HookPosCounterDone = &sim.HookPos{Name: "CounterDone"}

// CycleStart describes a refresh cycle that has just been armed.
type CycleStart struct {
	Counter  string
	Bank     uint64
	Duration uint64
}

// CycleEnd describes a refresh cycle that has signaled completion.
type CycleEnd struct {
	Counter string
	Bank    uint64
}

// Input carries the signals a host presents to a counter for one tick.
// Duration and Bank are sampled only on the tick where Start is asserted.
// Reset overrides every other input, including a concurrent Start.
type Input struct {
	Reset    bool
	Start    bool
	Duration uint64
	Bank     uint64
}

// A Counter tracks the elapsed time of one per-bank refresh operation.
//
// The output methods derive from the current state and stay stable until the
// next Update call commits the tick.
type Counter interface {
	sim.Named
	sim.Hookable

	// Assigned returns true while a refresh is in progress.
	Assigned() bool

	// Done returns true exactly on the tick where the countdown has reached
	// zero while the counter is still assigned.
	Done() bool

	// AssignedBank returns the bank the counter is currently timing. It
	// reads 0 when the counter is idle.
	AssignedBank() uint64

	// Remaining returns the number of ticks until the refresh completes.
	Remaining() uint64

	// Update commits one tick. All state registers advance together from
	// the pre-tick state and the given inputs. A protocol violation leaves
	// the state untouched and is returned as a *ProtocolViolation.
	Update(in Input) error
}

// CycleCounter is the default Counter implementation. It holds three
// registers: the countdown value, the assigned flag, and the identifier of
// the bank under refresh.
type CycleCounter struct {
	sim.HookableBase
	name string

	countMask uint64

	count    uint64
	assigned bool
	bank     uint64
}

// NewCycleCounter creates an idle CycleCounter whose countdown register is
// width bits wide. Width must be in the range [1, 64].
func NewCycleCounter(name string, width int) *CycleCounter {
	if width < 1 || width > 64 {
		panic("counter width must be in the range [1, 64]")
	}

	c := &CycleCounter{
		name:      name,
		countMask: widthMask(width),
	}

	return c
}

func widthMask(width int) uint64 {
	if width == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Name returns the name of the counter.
func (c *CycleCounter) Name() string {
	return c.name
}

// Assigned returns true while a refresh is in progress.
func (c *CycleCounter) Assigned() bool {
	return c.assigned
}

// Done returns the completion pulse. It is purely derived and not stored:
// true exactly on the tick where the counter is assigned and the countdown
// has reached zero.
func (c *CycleCounter) Done() bool {
	return c.assigned && c.count == 0
}

// AssignedBank returns the bank being timed, or 0 when idle.
func (c *CycleCounter) AssignedBank() uint64 {
	return c.bank
}

// Remaining returns the current countdown value.
func (c *CycleCounter) Remaining() uint64 {
	return c.count
}

// Update advances the counter by one tick.
//
// The transition is a single switch over the (start, assigned, zero) tuple
// so that every input combination is either one of the defined rows or an
// explicitly flagged violation. Violations hold the previous state; the
// caller decides whether repeated violations are fatal.
func (c *CycleCounter) Update(in Input) error {
	if in.Reset {
		c.count = 0
		c.assigned = false
		c.bank = 0

		return nil
	}

	zero := c.count == 0

	switch {
	case in.Start && c.assigned:
		return c.flagViolation(ReArmWhileBusy, in)

	case !c.assigned && !zero:
		// The countdown register can only be non-zero while assigned.
		return c.flagViolation(IllegalStateCombination, in)

	case in.Start && in.Duration&^c.countMask != 0:
		return c.flagViolation(IllegalStateCombination, in)

	case in.Start:
		c.count = in.Duration
		c.assigned = true
		c.bank = in.Bank
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosCounterArmed,
			Item: CycleStart{
				Counter:  c.name,
				Bank:     in.Bank,
				Duration: in.Duration,
			},
		})

	case c.assigned && !zero:
		c.count--

	case c.assigned && zero:
		// The tick that carries the completion pulse. The counter returns
		// to idle and forgets its bank on the next visible state.
		bank := c.bank
		c.assigned = false
		c.bank = 0
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosCounterDone,
			Item: CycleEnd{
				Counter: c.name,
				Bank:    bank,
			},
		})

	default:
		// Idle with no start request. Nothing changes.
	}

	return nil
}
