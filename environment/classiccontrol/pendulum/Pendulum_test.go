package pendulum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, -math.Pi},
	}

	for _, test := range tests {
		assert.InDelta(t, test.want, normalizeAngle(test.in), 1e-9,
			"normalizeAngle(%v)", test.in)
	}
}

func TestPendulumStaysInBounds(t *testing.T) {
	p, _, err := New(NewDefaultSwingUp(200, 5), 0.99)
	require.NoError(t, err)

	torque := mat.NewVecDense(1, []float64{100})
	steps := 0
	for done := false; !done; steps++ {
		var step = p.LastTimeStep()
		step, done, err = p.Step(torque)
		require.NoError(t, err)
		assert.True(t, p.ObservationSpec().Contains(step.Observation))
		assert.LessOrEqual(t, step.Reward, 0.0)
	}
	assert.Equal(t, 200, steps)
}
