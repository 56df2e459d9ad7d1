package sampler

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/environment"
	ts "github.com/samuelfneumann/gops/timestep"
)

// counter is an environment whose observation counts the steps of the
// current episode. Episodes last episodeSteps steps with reward 1.
type counter struct {
	episodeSteps int
	step         ts.TimeStep
	resets       int
	actions      []float64
	failAt       int
}

func (c *counter) Reset() (ts.TimeStep, error) {
	c.resets++
	c.step = ts.New(ts.First, 0, 1, mat.NewVecDense(1, []float64{0}), 0)
	return c.step, nil
}

func (c *counter) Step(a mat.Vector) (ts.TimeStep, bool, error) {
	c.actions = append(c.actions, a.AtVec(0))
	if c.failAt > 0 && len(c.actions) == c.failAt {
		return ts.TimeStep{}, false, errors.New("simulator crashed")
	}

	n := c.step.Number + 1
	stepType := ts.Mid
	if n == c.episodeSteps {
		stepType = ts.Last
	}
	c.step = ts.New(stepType, 1, 1, mat.NewVecDense(1, []float64{float64(n)}), n)
	return c.step, stepType == ts.Last, nil
}

func (c *counter) Seed(uint64)                       {}
func (c *counter) LastTimeStep() ts.TimeStep         { return c.step }
func (c *counter) ObservationSpec() environment.Spec { return c.ActionSpec() }
func (c *counter) DiscountSpec() environment.Spec    { return c.ActionSpec() }

func (c *counter) ActionSpec() environment.Spec {
	return environment.NewSpec(mat.NewVecDense(1, nil), environment.Action,
		mat.NewVecDense(1, []float64{-1}), mat.NewVecDense(1, []float64{1}),
		environment.Continuous)
}

// constant always takes the same action
type constant float64

func (c constant) Act(mat.Vector) (*mat.VecDense, error) {
	return mat.NewVecDense(1, []float64{float64(c)}), nil
}

func TestSampleOneStepResetsTransparently(t *testing.T) {
	env := &counter{episodeSteps: 3}
	s := New(env, NewPolicyStore(constant(0.5)), None{}, zerolog.Nop())

	var dones []bool
	for i := 0; i < 7; i++ {
		tr, done, err := s.SampleOneStep()
		require.NoError(t, err)
		dones = append(dones, done)

		assert.Equal(t, done, tr.Done)
		assert.Equal(t, tr.State.AtVec(0)+1, tr.NextState.AtVec(0))
		if done {
			assert.Equal(t, 0.0, tr.Discount)
		}
	}

	assert.Equal(t, []bool{false, false, true, false, false, true, false},
		dones)
	assert.Equal(t, 3, env.resets)
	assert.Equal(t, 7, s.TotalSteps())
}

func TestActionsAreClipped(t *testing.T) {
	env := &counter{episodeSteps: 10}
	s := New(env, NewPolicyStore(constant(5)), None{}, zerolog.Nop())

	tr, _, err := s.SampleOneStep()
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, env.actions)
	assert.Equal(t, 1.0, tr.Action.AtVec(0))
}

func TestSampleReportsEpisodeReturns(t *testing.T) {
	env := &counter{episodeSteps: 2}
	s := New(env, NewPolicyStore(constant(0)), None{}, zerolog.Nop())

	transitions, stats, err := s.Sample(5)
	require.NoError(t, err)
	assert.Len(t, transitions, 5)
	assert.Equal(t, 5, stats.Steps)
	assert.Equal(t, []float64{2, 2}, stats.EpisodeReturns)

	_, stats, err = s.Sample(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, stats.EpisodeReturns)
}

func TestEnvironmentFailurePropagates(t *testing.T) {
	env := &counter{episodeSteps: 10, failAt: 3}
	s := New(env, NewPolicyStore(constant(0)), None{}, zerolog.Nop())

	transitions, _, err := s.Sample(5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulator crashed")
	assert.Len(t, transitions, 2)
}

func TestNoPolicy(t *testing.T) {
	s := New(&counter{episodeSteps: 2}, &PolicyStore{}, None{}, zerolog.Nop())
	_, _, err := s.SampleOneStep()
	assert.ErrorIs(t, err, ErrNoPolicy)
}

func TestPolicyStorePublishIsVisible(t *testing.T) {
	store := NewPolicyStore(constant(0))
	env := &counter{episodeSteps: 100}
	s := New(env, store, None{}, zerolog.Nop())

	_, _, err := s.SampleOneStep()
	require.NoError(t, err)
	store.Publish(constant(-0.5))
	_, _, err = s.SampleOneStep()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -0.5}, env.actions)
}

func TestPolicyStoreConcurrentUse(t *testing.T) {
	store := NewPolicyStore(constant(0))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			store.Publish(constant(float64(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			assert.NotNil(t, store.Load())
		}
	}()
	wg.Wait()
}

func TestNoise(t *testing.T) {
	action := mat.NewVecDense(2, []float64{1, 1})
	None{}.Perturb(action)
	assert.Equal(t, []float64{1, 1}, action.RawVector().Data)

	NewGaussian(0, 1).Perturb(action)
	assert.Equal(t, []float64{1, 1}, action.RawVector().Data)

	NewGaussian(0.5, 1).Perturb(action)
	assert.NotEqual(t, []float64{1, 1}, action.RawVector().Data)

	d := NewDecaying(1, 0.5, 0.2, 1)
	for i := 0; i < 5; i++ {
		d.Perturb(mat.NewVecDense(1, nil))
	}
	assert.Equal(t, 0.2, d.Std())
}

func TestNoiseConfig(t *testing.T) {
	tests := []struct {
		config  NoiseConfig
		want    interface{}
		wantErr bool
	}{
		{NoiseConfig{}, None{}, false},
		{NoiseConfig{Type: NoNoise}, None{}, false},
		{NoiseConfig{Type: GaussianNoise, Std: 0.1}, &Gaussian{}, false},
		{NoiseConfig{Type: DecayingGaussian, Std: 0.1, Decay: 0.99},
			&Decaying{}, false},
		{NoiseConfig{Type: GaussianNoise, Std: -1}, nil, true},
		{NoiseConfig{Type: DecayingGaussian, Std: 0.1, Decay: 2}, nil, true},
		{NoiseConfig{Type: "ou"}, nil, true},
	}

	for _, test := range tests {
		noise, err := test.config.Create(1)
		if test.wantErr {
			assert.Error(t, err, test.config.Type)
			continue
		}
		require.NoError(t, err)
		assert.IsType(t, test.want, noise)
	}
}
