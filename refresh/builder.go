package refresh

import (
	"github.com/sarchlab/refreshsim/sim"
)

// Builder can build refresh slot components.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	hooks  []sim.Hook

	counterWidth int
}

// MakeBuilder creates a builder with default configuration. The default
// frequency matches a DDR command clock and the default counter width holds
// any realistic tRFCpb value.
func MakeBuilder() Builder {
	b := Builder{
		freq:         1600 * sim.MHz,
		counterWidth: 32,
	}

	return b
}

// WithEngine sets the engine that drives the component.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the tick frequency of the component.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithCounterWidth sets the width, in bits, of the countdown register. The
// width bounds the maximum representable refresh duration.
func (b Builder) WithCounterWidth(width int) Builder {
	b.counterWidth = width
	return b
}

// WithAdditionalHooks adds the given hook to the component and its counter.
func (b Builder) WithAdditionalHooks(h sim.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// Build builds a refresh slot component.
func (b Builder) Build(name string) *Comp {
	b.engineMustBeSet()

	counter := NewCycleCounter(name+".Counter", b.counterWidth)

	c := &Comp{
		counter: counter,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	for _, hook := range b.hooks {
		c.AcceptHook(hook)
		counter.AcceptHook(hook)
	}

	m := &middleware{Comp: c}
	c.AddMiddleware(m)

	return c
}

func (b Builder) engineMustBeSet() {
	if b.engine == nil {
		panic("refresh slot components require an engine")
	}
}
