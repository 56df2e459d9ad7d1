// Package wrappers implements wrappers around environments which alter
// the TimeSteps an environment produces
package wrappers

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/timestep"
)

// ShapingReward wraps an environment and rescales its rewards:
//
//	r' = (r + shift) * scale
//
// The unshaped reward is kept in the RawReward field of each TimeStep
// so that evaluation can report returns in the units of the wrapped
// environment.
//
// ShapingReward itself implements the environment.Environment
// interface, and is therefore itself an Environment.
type ShapingReward struct {
	environment.Environment
	shift float64
	scale float64

	lastStep timestep.TimeStep
}

// NewShapingReward creates and returns a new ShapingReward wrapping env
func NewShapingReward(env environment.Environment, shift,
	scale float64) *ShapingReward {
	return &ShapingReward{
		Environment: env,
		shift:       shift,
		scale:       scale,
		lastStep:    env.LastTimeStep(),
	}
}

// Reset resets the wrapped environment. The first TimeStep of an
// episode carries no reward and is passed through unchanged.
func (s *ShapingReward) Reset() (timestep.TimeStep, error) {
	step, err := s.Environment.Reset()
	if err != nil {
		return step, err
	}
	s.lastStep = step
	return step, nil
}

// Step steps the wrapped environment and rescales the reward
func (s *ShapingReward) Step(a mat.Vector) (timestep.TimeStep, bool,
	error) {
	step, last, err := s.Environment.Step(a)
	if err != nil {
		return step, last, err
	}

	step.RawReward = step.Reward
	step.Reward = (step.Reward + s.shift) * s.scale

	s.lastStep = step
	return step, last, nil
}

// LastTimeStep returns the last TimeStep produced by the wrapper, with
// its shaped reward
func (s *ShapingReward) LastTimeStep() timestep.TimeStep {
	return s.lastStep
}
