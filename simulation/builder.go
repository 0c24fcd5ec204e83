package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/refreshsim/datarecording"
	"github.com/sarchlab/refreshsim/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	s := &Simulation{
		compNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "refreshsim_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)

	s.engine = sim.NewSerialEngine()

	return s
}
