package evaluator

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/experiment/trackers"
	ts "github.com/samuelfneumann/gops/timestep"
)

// echo rewards the action taken, for a fixed number of steps
type echo struct {
	episodeSteps int
	step         ts.TimeStep
	resets       int
	fail         bool
}

func (e *echo) Reset() (ts.TimeStep, error) {
	if e.fail {
		return ts.TimeStep{}, errors.New("reset failed")
	}
	e.resets++
	e.step = ts.New(ts.First, 0, 1, mat.NewVecDense(1, nil), 0)
	return e.step, nil
}

func (e *echo) Step(a mat.Vector) (ts.TimeStep, bool, error) {
	n := e.step.Number + 1
	done := n == e.episodeSteps
	stepType := ts.Mid
	if done {
		stepType = ts.Last
	}
	e.step = ts.New(stepType, a.AtVec(0), 1, mat.NewVecDense(1, nil), n)
	return e.step, done, nil
}

func (e *echo) Seed(uint64)                       {}
func (e *echo) LastTimeStep() ts.TimeStep         { return e.step }
func (e *echo) ObservationSpec() environment.Spec { return e.ActionSpec() }
func (e *echo) DiscountSpec() environment.Spec    { return e.ActionSpec() }

func (e *echo) ActionSpec() environment.Spec {
	return environment.NewSpec(mat.NewVecDense(1, nil), environment.Action,
		mat.NewVecDense(1, []float64{-1}), mat.NewVecDense(1, []float64{1}),
		environment.Continuous)
}

type constant float64

func (c constant) Act(mat.Vector) (*mat.VecDense, error) {
	return mat.NewVecDense(1, []float64{float64(c)}), nil
}

func TestEvaluateAveragesReturns(t *testing.T) {
	env := &echo{episodeSteps: 4}
	e, err := New(env, 3, "", zerolog.Nop())
	require.NoError(t, err)

	average, err := e.Evaluate(constant(0.5), 10)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, average, 1e-12)
	assert.Equal(t, 3, env.resets)
	assert.Equal(t, 1, e.Evaluations())

	// Actions are clipped to the action bounds
	average, err = e.Evaluate(constant(3), 20)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, average, 1e-12)
	assert.Equal(t, 2, e.Evaluations())
}

func TestEvaluateSavesEpisodeData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "evaluator")
	e, err := New(&echo{episodeSteps: 2}, 2, dir, zerolog.Nop())
	require.NoError(t, err)

	_, err = e.Evaluate(constant(1), 25)
	require.NoError(t, err)

	returns, err := trackers.LoadData(filepath.Join(dir, "returns_25.gob"))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, returns)
}

func TestEvaluateEnvironmentFailure(t *testing.T) {
	e, err := New(&echo{episodeSteps: 2, fail: true}, 1, "", zerolog.Nop())
	require.NoError(t, err)

	_, err = e.Evaluate(constant(1), 1)
	assert.Error(t, err)
	assert.Equal(t, 0, e.Evaluations())
}

func TestNewRejectsZeroEpisodes(t *testing.T) {
	_, err := New(&echo{episodeSteps: 2}, 0, "", zerolog.Nop())
	assert.Error(t, err)
}
