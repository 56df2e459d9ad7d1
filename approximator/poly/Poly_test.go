package poly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/approximator"
	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/expreplay"
	"github.com/samuelfneumann/gops/solver"
	"github.com/samuelfneumann/gops/timestep"
)

func specs() (environment.Spec, environment.Spec) {
	obs := environment.NewSpec(
		mat.NewVecDense(2, nil),
		environment.Observation,
		mat.NewVecDense(2, []float64{-1, -1}),
		mat.NewVecDense(2, []float64{1, 1}),
		environment.Continuous,
	)
	act := environment.NewSpec(
		mat.NewVecDense(1, nil),
		environment.Action,
		mat.NewVecDense(1, []float64{-2}),
		mat.NewVecDense(1, []float64{4}),
		environment.Continuous,
	)
	return obs, act
}

func batchOf(t *testing.T, transitions ...timestep.Transition) *expreplay.Batch {
	buffer, err := expreplay.New(len(transitions), 2, 1, 1)
	require.NoError(t, err)
	for _, tr := range transitions {
		require.NoError(t, buffer.Add(tr))
	}
	b, err := buffer.Sample(len(transitions))
	require.NoError(t, err)
	return b
}

func transition(s0, s1, a, r float64, done bool) timestep.Transition {
	return timestep.Transition{
		State:     mat.NewVecDense(2, []float64{s0, s1}),
		Action:    mat.NewVecDense(1, []float64{a}),
		Reward:    r,
		NextState: mat.NewVecDense(2, []float64{s1, s0}),
		Done:      done,
	}
}

func TestFeatures(t *testing.T) {
	x := []float64{2, 3}
	assert.Equal(t, []float64{1, 1, 2, 3, 4, 9}, features(nil, x, 3))
	assert.Equal(t, []float64{1, 1}, features(nil, x, 1))

	// d/dx_0 of 1*1 + 1*x_0 + 2*x_0^2 = 1 + 4*x_0
	w := []float64{1, 0, 1, 0, 2, 0}
	assert.InDelta(t, 9.0, featureDerivative(w, x, 0, 3), 1e-12)
	assert.InDelta(t, 0.0, featureDerivative(w, x, 1, 3), 1e-12)
}

func TestPolicyActsWithinBounds(t *testing.T) {
	obs, act := specs()
	c := DefaultConfig()
	c.InitStd = 1.0
	a, err := New(c, obs, act, 3)
	require.NoError(t, err)

	policy := a.Policy()
	for _, o := range [][]float64{{0, 0}, {1, -1}, {0.5, 0.25}} {
		action, err := policy.Act(mat.NewVecDense(2, o))
		require.NoError(t, err)
		assert.True(t, act.Contains(action))
	}

	_, err = policy.Act(mat.NewVecDense(3, nil))
	assert.Error(t, err)
}

func TestZeroPolicyActsAtMidpoint(t *testing.T) {
	obs, act := specs()
	a, err := New(DefaultConfig(), obs, act, 1)
	require.NoError(t, err)

	action, err := a.Policy().Act(mat.NewVecDense(2, []float64{0.3, 0.1}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, action.AtVec(0), 1e-12)
}

func TestCriticMovesTowardTarget(t *testing.T) {
	obs, act := specs()
	c := DefaultConfig()
	c.ValueLearningRate = 0.1
	a, err := New(c, obs, act, 1)
	require.NoError(t, err)

	b := batchOf(t, transition(0.5, 0.1, 1, 1, true))

	result, err := a.Update(b, 1)
	require.NoError(t, err)
	require.Len(t, result.TDErrors, 1)
	assert.InDelta(t, 1.0, result.TDErrors[0], 1e-12)
	assert.InDelta(t, 1.0, result.Metrics[approximator.LossCritic], 1e-12)
	assert.Contains(t, result.Metrics, approximator.LossActor)
	assert.Contains(t, result.Metrics, approximator.AlgTime)
	assert.Contains(t, result.Metrics, approximator.CriticAverageValue)

	for i := 2; i < 50; i++ {
		result, err = a.Update(b, i)
		require.NoError(t, err)
	}
	assert.Less(t, math.Abs(result.TDErrors[0]), 0.1)
}

func TestCriticMovesTowardTargetWithAdam(t *testing.T) {
	obs, act := specs()
	c := DefaultConfig()
	c.Optimizer = solver.Adam
	c.ValueLearningRate = 0.05
	a, err := New(c, obs, act, 1)
	require.NoError(t, err)

	b := batchOf(t, transition(0.5, 0.1, 1, 1, true))
	var result approximator.Result
	for i := 1; i < 200; i++ {
		result, err = a.Update(b, i)
		require.NoError(t, err)
	}
	assert.Less(t, math.Abs(result.TDErrors[0]), 0.1)
}

func TestActorAscendsCritic(t *testing.T) {
	obs, act := specs()
	c := DefaultConfig()
	c.PolicyLearningRate = 0.1
	a, err := New(c, obs, act, 1)
	require.NoError(t, err)

	// Q(s, a) = a
	n := obs.Dims() + act.Dims()
	a.critic.weights[1*n+obs.Dims()] = 1

	state := []float64{0.2, -0.4}
	before, _ := a.actor.forward(state)
	loss, err := a.actorStep([][]float64{state}, true)
	require.NoError(t, err)
	after, _ := a.actor.forward(state)

	assert.InDelta(t, -before.AtVec(0), loss, 1e-12)
	assert.Greater(t, after.AtVec(0), before.AtVec(0))
}

func TestDelayedActorUpdate(t *testing.T) {
	obs, act := specs()
	c := DefaultConfig()
	c.DelayUpdate = 2
	c.InitStd = 0.1
	a, err := New(c, obs, act, 1)
	require.NoError(t, err)

	b := batchOf(t, transition(0.5, 0.1, 1, 1, false),
		transition(-0.5, 0.3, -1, 0, false))

	weights := mat.DenseCopyOf(a.actor.weights)
	target := mat.DenseCopyOf(a.targetActor.weights)
	_, err = a.Update(b, 1)
	require.NoError(t, err)
	assert.True(t, mat.Equal(weights, a.actor.weights))
	assert.True(t, mat.Equal(target, a.targetActor.weights))

	_, err = a.Update(b, 2)
	require.NoError(t, err)
	assert.False(t, mat.Equal(weights, a.actor.weights))
	assert.False(t, mat.Equal(target, a.targetActor.weights))
}

func TestPolicySnapshotIsIndependent(t *testing.T) {
	obs, act := specs()
	c := DefaultConfig()
	c.PolicyLearningRate = 0.5
	a, err := New(c, obs, act, 1)
	require.NoError(t, err)
	n := obs.Dims() + act.Dims()
	a.critic.weights[1*n+obs.Dims()] = 1

	snapshot := a.Policy()
	o := mat.NewVecDense(2, []float64{0.2, 0.2})
	before, err := snapshot.Act(o)
	require.NoError(t, err)

	_, err = a.actorStep([][]float64{{0.2, 0.2}}, true)
	require.NoError(t, err)

	after, err := snapshot.Act(o)
	require.NoError(t, err)
	assert.Equal(t, before.AtVec(0), after.AtVec(0))
}

func TestDivergenceIsReported(t *testing.T) {
	obs, act := specs()
	a, err := New(DefaultConfig(), obs, act, 1)
	require.NoError(t, err)
	a.targetCritic.weights[0] = math.NaN()

	_, err = a.Update(batchOf(t, transition(0, 0, 0, 0, false)), 1)
	require.Error(t, err)
	assert.True(t, approximator.IsDiverged(err))
}

func TestStateDictRoundTrip(t *testing.T) {
	obs, act := specs()
	c := DefaultConfig()
	c.InitStd = 0.5
	a, err := New(c, obs, act, 1)
	require.NoError(t, err)

	data, err := a.StateDict()
	require.NoError(t, err)

	other, err := New(c, obs, act, 99)
	require.NoError(t, err)
	require.NoError(t, other.LoadStateDict(data))

	o := mat.NewVecDense(2, []float64{0.3, -0.7})
	want, err := a.Policy().Act(o)
	require.NoError(t, err)
	have, err := other.Policy().Act(o)
	require.NoError(t, err)
	assert.Equal(t, want.AtVec(0), have.AtVec(0))
	assert.Equal(t, a.targetCritic.weights, other.targetCritic.weights)

	c.PolicyDegree = 2
	mismatched, err := New(c, obs, act, 1)
	require.NoError(t, err)
	assert.Error(t, mismatched.LoadStateDict(data))
	assert.Error(t, a.LoadStateDict([]byte("garbage")))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := map[string]func(*Config){
		"degree": func(c *Config) { c.PolicyDegree = 0 },
		"lr":     func(c *Config) { c.ValueLearningRate = 0 },
		"gamma":  func(c *Config) { c.Gamma = 1.5 },
		"tau":    func(c *Config) { c.Tau = 0 },
		"delay":  func(c *Config) { c.DelayUpdate = 0 },
		"std":    func(c *Config) { c.InitStd = -1 },
		"solver": func(c *Config) { c.Optimizer = "SGDM" },
		"clip":   func(c *Config) { c.GradClip = -1 },
	}
	for name, mutate := range tests {
		c := DefaultConfig()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}
