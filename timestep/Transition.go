package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Transition is a single (s, a, r, s', done) tuple of environment
// interaction. The Discount field holds the discount of the environment
// at the next state, so that Discount == 0 whenever Done is true.
type Transition struct {
	State     *mat.VecDense
	Action    *mat.VecDense
	Reward    float64
	Discount  float64
	NextState *mat.VecDense
	Done      bool
}

// NewTransition creates a new Transition from the timestep before
// an action was taken, the action, and the resulting timestep.
func NewTransition(step TimeStep, action *mat.VecDense,
	next TimeStep) Transition {
	discount := next.Discount
	if next.Last() {
		discount = 0.0
	}

	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    next.Reward,
		Discount:  discount,
		NextState: next.Observation,
		Done:      next.Last(),
	}
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | State: %v  |  Action: %v  |  "+
		"Reward: %.2f  |  Next State: %v  |  Done: %v",
		mat.Formatted(t.State.T()), mat.Formatted(t.Action.T()), t.Reward,
		mat.Formatted(t.NextState.T()), t.Done)
}
