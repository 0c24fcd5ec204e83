// Package simulation provides the service that assembles the pieces of a
// refresh-timing simulation.
package simulation

import (
	"github.com/sarchlab/refreshsim/datarecording"
	"github.com/sarchlab/refreshsim/sim"
)

// A Simulation provides the service required to define a simulation.
type Simulation struct {
	id string

	engine       sim.Engine
	dataRecorder datarecording.DataRecorder

	components    []sim.Component
	compNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	return s.components[s.compNameIndex[name]]
}

// Components returns all the registered components.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// Terminate terminates the simulation.
func (s *Simulation) Terminate() {
	s.dataRecorder.Close()
}
