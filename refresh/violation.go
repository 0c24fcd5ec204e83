package refresh

import (
	"fmt"

	"github.com/sarchlab/refreshsim/sim"
)

// HookPosViolation is a hook position that triggers when a caller breaks the
// counter's input-sequencing contract. The hook item is the
// *ProtocolViolation that is also returned from Update.
var HookPosViolation = &sim.HookPos{Name: "ProtocolViolation"}

// ViolationKind classifies protocol violations.
type ViolationKind int

const (
	// ReArmWhileBusy is raised when start is asserted while the counter is
	// still timing a refresh.
	ReArmWhileBusy ViolationKind = iota

	// IllegalStateCombination is raised when an input/state combination
	// outside the defined transition table occurs.
	IllegalStateCombination
)

// String returns the name of the violation kind.
func (k ViolationKind) String() string {
	switch k {
	case ReArmWhileBusy:
		return "ReArmWhileBusy"
	case IllegalStateCombination:
		return "IllegalStateCombination"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}
}

// A ProtocolViolation reports a caller breaking the input-sequencing
// contract of a counter. It carries the offending inputs and a snapshot of
// the pre-tick state, which the counter keeps unchanged.
type ProtocolViolation struct {
	Counter string
	Kind    ViolationKind

	Input Input

	Count    uint64
	Assigned bool
	Bank     uint64
}

// Error returns a description of the violated invariant and the offending
// input values.
func (v *ProtocolViolation) Error() string {
	return fmt.Sprintf(
		"%s: %s with input {reset: %t, start: %t, duration: %d, bank: %d}, "+
			"state {count: %d, assigned: %t, bank: %d}",
		v.Counter, v.Kind,
		v.Input.Reset, v.Input.Start, v.Input.Duration, v.Input.Bank,
		v.Count, v.Assigned, v.Bank,
	)
}

func (c *CycleCounter) flagViolation(
	kind ViolationKind,
	in Input,
) *ProtocolViolation {
	v := &ProtocolViolation{
		Counter:  c.name,
		Kind:     kind,
		Input:    in,
		Count:    c.count,
		Assigned: c.assigned,
		Bank:     c.bank,
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosViolation,
		Item:   v,
	})

	return v
}
