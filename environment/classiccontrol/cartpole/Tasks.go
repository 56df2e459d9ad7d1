package cartpole

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gops/environment"
	ts "github.com/samuelfneumann/gops/timestep"
)

// Balance implements the classic control Cartpole Balance task. In this
// Task, the goal of the agent is to balance the pole on the cart in
// an upright position for as long as possible.
//
// The reward is +1 for every timestep on which the pole is within the
// angle threshold and the cart is within the position threshold, and 0
// on the step that violates them.
//
// Episodes end after a step limit, after the pole has fallen below
// the angle threshold, or after the cart leaves the position threshold.
type Balance struct {
	env.Starter
	stepLimiter  *env.StepLimit
	stateLimiter *env.IntervalLimit
	failAngle    float64
	failPosition float64
}

// NewBalance creates and returns a new Balance task
func NewBalance(s env.Starter, episodeSteps int) *Balance {
	stepLimiter := env.NewStepLimit(episodeSteps)

	legal := []r1.Interval{
		{Min: -PositionThreshold, Max: PositionThreshold},
		{Min: -AngleThreshold, Max: AngleThreshold},
	}

	// Lengths match, so the error can be ignored
	stateLimiter, _ := env.NewIntervalLimit(legal, []int{0, 2})

	return &Balance{s, stepLimiter, stateLimiter, AngleThreshold,
		PositionThreshold}
}

// NewDefaultBalance returns the Balance task with starting states
// drawn uniformly from [-0.05, 0.05] in every dimension
func NewDefaultBalance(episodeSteps int, seed uint64) *Balance {
	bounds := make([]r1.Interval, ObservationDims)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -0.05, Max: 0.05}
	}
	return NewBalance(env.NewUniformStarter(bounds, seed), episodeSteps)
}

// Seed re-seeds the starting state distribution
func (b *Balance) Seed(seed uint64) {
	if s, ok := b.Starter.(env.Seeder); ok {
		s.Seed(seed)
	}
}

// End checks if a TimeStep is the last in an episode. If so, it adjusts
// the TimeStep's StepType to timestep.Last and returns true. Otherwise,
// the function does not adjust the TimeStep and returns false.
func (b *Balance) End(t *ts.TimeStep) bool {
	if end := b.stateLimiter.End(t); end {
		return true
	}
	return b.stepLimiter.End(t)
}

// GetReward returns the reward for an action taken in some state,
// resulting in a transition to the next state nextState.
func (b *Balance) GetReward(_, _, nextState mat.Vector) float64 {
	angle := math.Abs(nextState.AtVec(2))
	position := math.Abs(nextState.AtVec(0))

	if angle <= b.failAngle && position <= b.failPosition {
		return 1.0
	}
	return 0.0
}
