// Package trace provides hooks that record the activity of refresh cycle
// counters.
package trace

import (
	"log"

	"github.com/sarchlab/refreshsim/datarecording"
	"github.com/sarchlab/refreshsim/refresh"
	"github.com/sarchlab/refreshsim/sim"
)

// refreshCycleEntry represents one completed refresh cycle in the database.
type refreshCycleEntry struct {
	Counter   string
	Bank      uint64
	Duration  uint64
	StartTime float64
	EndTime   float64
}

// violationEntry represents one protocol violation in the database.
type violationEntry struct {
	Counter  string
	Time     float64
	Kind     string
	Start    bool
	Duration uint64
	Bank     uint64
}

// A LogTracer is a hook that prints refresh counter activity to a logger.
type LogTracer struct {
	sim.LogHookBase
	timeTeller sim.TimeTeller
}

// NewLogTracer creates a LogTracer that writes into the given logger.
func NewLogTracer(logger *log.Logger, timeTeller sim.TimeTeller) *LogTracer {
	t := new(LogTracer)
	t.Logger = logger
	t.timeTeller = timeTeller

	return t
}

// Func writes the counter activity into the logger.
func (t *LogTracer) Func(ctx sim.HookCtx) {
	now := t.timeTeller.CurrentTime()

	switch ctx.Pos {
	case refresh.HookPosCounterArmed:
		start := ctx.Item.(refresh.CycleStart)
		t.Printf("%.10f, %s, armed, bank %d, %d cycles\n",
			now, start.Counter, start.Bank, start.Duration)
	case refresh.HookPosCounterDone:
		end := ctx.Item.(refresh.CycleEnd)
		t.Printf("%.10f, %s, done, bank %d\n",
			now, end.Counter, end.Bank)
	case refresh.HookPosViolation:
		v := ctx.Item.(*refresh.ProtocolViolation)
		t.Printf("%.10f, violation, %s\n", now, v)
	}
}

// A DBTracer is a hook that records refresh cycles and protocol violations
// into a data recorder.
type DBTracer struct {
	timeTeller   sim.TimeTeller
	dataRecorder datarecording.DataRecorder

	inflightCycles map[string]refreshCycleEntry
}

// NewDBTracer creates a DBTracer that writes into the given data recorder.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	timeTeller sim.TimeTeller,
) *DBTracer {
	t := &DBTracer{
		timeTeller:     timeTeller,
		dataRecorder:   dataRecorder,
		inflightCycles: make(map[string]refreshCycleEntry),
	}

	t.dataRecorder.CreateTable("refresh_cycles", refreshCycleEntry{})
	t.dataRecorder.CreateTable("refresh_violations", violationEntry{})

	return t
}

// Func records the counter activity.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case refresh.HookPosCounterArmed:
		t.startCycle(ctx.Item.(refresh.CycleStart))
	case refresh.HookPosCounterDone:
		t.endCycle(ctx.Item.(refresh.CycleEnd))
	case refresh.HookPosViolation:
		t.recordViolation(ctx.Item.(*refresh.ProtocolViolation))
	}
}

func (t *DBTracer) startCycle(start refresh.CycleStart) {
	t.inflightCycles[start.Counter] = refreshCycleEntry{
		Counter:   start.Counter,
		Bank:      start.Bank,
		Duration:  start.Duration,
		StartTime: float64(t.timeTeller.CurrentTime()),
	}
}

func (t *DBTracer) endCycle(end refresh.CycleEnd) {
	entry, exists := t.inflightCycles[end.Counter]
	if !exists {
		return
	}

	entry.EndTime = float64(t.timeTeller.CurrentTime())
	t.dataRecorder.InsertData("refresh_cycles", entry)

	delete(t.inflightCycles, end.Counter)
}

func (t *DBTracer) recordViolation(v *refresh.ProtocolViolation) {
	entry := violationEntry{
		Counter:  v.Counter,
		Time:     float64(t.timeTeller.CurrentTime()),
		Kind:     v.Kind.String(),
		Start:    v.Input.Start,
		Duration: v.Input.Duration,
		Bank:     v.Input.Bank,
	}

	t.dataRecorder.InsertData("refresh_violations", entry)
}
