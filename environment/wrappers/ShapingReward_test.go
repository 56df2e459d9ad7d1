package wrappers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/environment/classiccontrol/cartpole"
)

func TestShapingRewardRescales(t *testing.T) {
	c, _, err := cartpole.New(cartpole.NewDefaultBalance(10, 1), 0.99)
	require.NoError(t, err)

	s := NewShapingReward(c, 1.0, 0.5)
	_, err = s.Reset()
	require.NoError(t, err)

	step, _, err := s.Step(mat.NewVecDense(1, []float64{0}))
	require.NoError(t, err)

	// Cartpole gives +1 while balanced
	assert.Equal(t, 1.0, step.RawReward)
	assert.Equal(t, 1.0, step.Reward)
	assert.Equal(t, step.Reward, s.LastTimeStep().Reward)

	s = NewShapingReward(c, 0.0, 0.2)
	step, _, err = s.Step(mat.NewVecDense(1, []float64{0}))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, step.Reward, 1e-12)
	assert.Equal(t, 1.0, step.RawReward)
}
