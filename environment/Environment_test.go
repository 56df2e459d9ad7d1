package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gops/timestep"
)

func TestUniformStarterWithinBoundsAndReseedable(t *testing.T) {
	bounds := []r1.Interval{{Min: -0.05, Max: 0.05}, {Min: 1, Max: 2}}
	s := NewUniformStarter(bounds, 7)

	first := s.Start()
	for i := 0; i < 100; i++ {
		v := s.Start()
		assert.InDelta(t, 0.0, v.AtVec(0), 0.05)
		assert.GreaterOrEqual(t, v.AtVec(1), 1.0)
		assert.LessOrEqual(t, v.AtVec(1), 2.0)
	}

	s.Seed(7)
	assert.True(t, mat.Equal(first, s.Start()))
}

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)
	step := timestep.New(timestep.Mid, 0, 1, mat.NewVecDense(1, nil), 2)
	assert.False(t, limit.End(&step))
	assert.False(t, step.Last())

	step.Number = 3
	assert.True(t, limit.End(&step))
	assert.True(t, step.Last())
}

func TestIntervalLimit(t *testing.T) {
	_, err := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}}, nil)
	require.Error(t, err)

	limit, err := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}}, []int{1})
	require.NoError(t, err)

	step := timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(2, []float64{5, 0.5}), 1)
	assert.False(t, limit.End(&step))

	step.Observation.SetVec(1, -1.5)
	assert.True(t, limit.End(&step))
	assert.True(t, step.Last())
}

func TestSpecClipAndContains(t *testing.T) {
	spec := NewSpec(mat.NewVecDense(2, nil), Action,
		mat.NewVecDense(2, []float64{-1, 0}),
		mat.NewVecDense(2, []float64{1, 2}), Continuous)

	v := mat.NewVecDense(2, []float64{-3, 5})
	assert.False(t, spec.Contains(v))

	spec.Clip(v)
	assert.Equal(t, []float64{-1, 2}, v.RawVector().Data)
	assert.True(t, spec.Contains(v))
	assert.Equal(t, 2, spec.Dims())
}

func TestClamp(t *testing.T) {
	bounds := r1.Interval{Min: -1, Max: 1}
	assert.Equal(t, 1.0, Clamp(3, bounds))
	assert.Equal(t, -1.0, Clamp(-3, bounds))
	assert.Equal(t, 0.5, Clamp(0.5, bounds))
}
