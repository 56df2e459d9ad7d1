package pendulum

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gops/environment"
)

// SwingUp implements a task where the agent must swing the pendulum up
// and hold it in a vertical position. Rewards penalize the angle from
// the positive y-axis, the angular velocity, and the torque applied:
//
//	r = -(θ² + 0.1 θ̇² + 0.001 u²)
type SwingUp struct {
	environment.Starter
	environment.Ender
}

// NewSwingUp creates and returns a new SwingUp task
func NewSwingUp(s environment.Starter, maxSteps int) *SwingUp {
	ender := environment.NewStepLimit(maxSteps)
	return &SwingUp{s, ender}
}

// NewDefaultSwingUp returns a SwingUp task whose starting angles are
// uniform in [-π, π] and starting speeds uniform in [-1, 1]
func NewDefaultSwingUp(maxSteps int, seed uint64) *SwingUp {
	bounds := []r1.Interval{
		{Min: -AngleBound, Max: AngleBound},
		{Min: -1, Max: 1},
	}
	return NewSwingUp(environment.NewUniformStarter(bounds, seed), maxSteps)
}

// Seed re-seeds the starting state distribution
func (s *SwingUp) Seed(seed uint64) {
	if seeder, ok := s.Starter.(environment.Seeder); ok {
		seeder.Seed(seed)
	}
}

// GetReward gets the reward for taking action in state
func (s *SwingUp) GetReward(state, action, _ mat.Vector) float64 {
	th, thdot := state.AtVec(0), state.AtVec(1)
	u := action.AtVec(0)
	return -(th*th + 0.1*thdot*thdot + 0.001*u*u)
}

// Min returns the minimum possible reward
func (s *SwingUp) Min() float64 {
	return -(math.Pi*math.Pi + 0.1*SpeedBound*SpeedBound +
		0.001*TorqueBound*TorqueBound)
}

// Max returns the maximum possible reward
func (s *SwingUp) Max() float64 {
	return 0.0
}
