package expreplay

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/timestep"
)

// Batch is a batch of transitions sampled from a replay buffer. Row i
// of each matrix, and element i of each slice, belong to the same
// transition.
type Batch struct {
	States     *mat.Dense
	Actions    *mat.Dense
	Rewards    []float64
	Discounts  []float64
	NextStates *mat.Dense
	Dones      []bool

	// Indices are the buffer slots the transitions were drawn from.
	// They are only valid for updating priorities until the slot is
	// overwritten.
	Indices []int

	// Weights are the importance sampling weights of each transition.
	// For uniform sampling, all weights are 1.
	Weights []float64
}

// newBatch allocates a Batch for size transitions
func newBatch(size, featureSize, actionSize int) *Batch {
	weights := make([]float64, size)
	for i := range weights {
		weights[i] = 1.0
	}

	return &Batch{
		States:     mat.NewDense(size, featureSize, nil),
		Actions:    mat.NewDense(size, actionSize, nil),
		Rewards:    make([]float64, size),
		Discounts:  make([]float64, size),
		NextStates: mat.NewDense(size, featureSize, nil),
		Dones:      make([]bool, size),
		Indices:    make([]int, size),
		Weights:    weights,
	}
}

// Size returns the number of transitions in the batch
func (b *Batch) Size() int {
	return len(b.Rewards)
}

// Transition returns a copy of the ith transition in the batch
func (b *Batch) Transition(i int) timestep.Transition {
	return timestep.Transition{
		State:     mat.VecDenseCopyOf(b.States.RowView(i)),
		Action:    mat.VecDenseCopyOf(b.Actions.RowView(i)),
		Reward:    b.Rewards[i],
		Discount:  b.Discounts[i],
		NextState: mat.VecDenseCopyOf(b.NextStates.RowView(i)),
		Done:      b.Dones[i],
	}
}
