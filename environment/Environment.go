// Package environment outlines the interfaces and structs needed to
// implement concrete environments. Environments are treated as opaque
// step/reset collaborators by the samplers and evaluators.
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Seeder is a type whose random number generation can be re-seeded
type Seeder interface {
	Seed(seed uint64)
}

// Ender determines when an episode should end. If the episode should
// end, End() adjusts the StepType of the TimeStep to timestep.Last and
// returns true.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme, starting state distribution, and
// episode termination for taking actions in some environment
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
}

// Environment implements a simulated environment. Environments own
// their physical state; only the component holding an Environment may
// step it.
type Environment interface {
	// Reset resets the environment between episodes
	Reset() (timestep.TimeStep, error)

	// Step takes one environmental step and returns the next TimeStep
	// and whether the episode ended
	Step(action mat.Vector) (timestep.TimeStep, bool, error)

	// Seed re-seeds the randomness of the environment
	Seed(seed uint64)

	// LastTimeStep returns the most recent TimeStep
	LastTimeStep() timestep.TimeStep

	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
}

// Closer is an Environment which must be closed when it is no longer
// needed
type Closer interface {
	Environment
	Close() error
}
