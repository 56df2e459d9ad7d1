package timestep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewTransitionZeroesDiscountAtEpisodeEnd(t *testing.T) {
	s := New(First, 0, 0.99, mat.NewVecDense(2, []float64{0, 1}), 0)
	a := mat.NewVecDense(1, []float64{0.5})

	mid := New(Mid, 1.0, 0.99, mat.NewVecDense(2, []float64{1, 2}), 1)
	tr := NewTransition(s, a, mid)
	assert.False(t, tr.Done)
	assert.Equal(t, 0.99, tr.Discount)
	assert.Equal(t, 1.0, tr.Reward)

	last := New(Last, -1.0, 0.99, mat.NewVecDense(2, []float64{1, 2}), 1)
	tr = NewTransition(s, a, last)
	assert.True(t, tr.Done)
	assert.Equal(t, 0.0, tr.Discount)
}
