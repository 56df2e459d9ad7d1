package create

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/gops/config"
	"github.com/samuelfneumann/gops/environment/wrappers"
	"github.com/samuelfneumann/gops/experiment"
	"github.com/samuelfneumann/gops/experiment/checkpointer"
	"github.com/samuelfneumann/gops/experiment/tracker"
	"github.com/samuelfneumann/gops/expreplay"
	"github.com/samuelfneumann/gops/sampler"
)

func testConfig() config.Config {
	c := config.Default()
	c.EnvID = string(CartpoleContinuous)
	c.Algorithm = string(DDPG)
	c.Trainer = string(experiment.OffSerialType)
	c.MaxEpisodeSteps = 50
	c.BufferMaxSize = 200
	c.BufferWarmSize = 20
	c.ReplayBatchSize = 8
	c.SampleInterval = 1
	c.SampleBatchSize = 2
	c.MaxIteration = 40
	c.EvalInterval = 20
	c.ApprfuncSaveInterval = 20
	c.LogSaveInterval = 10
	c.NumEvalEpisode = 1
	return c
}

func newContext(t *testing.T, c config.Config) *experiment.Context {
	ctx := experiment.NewContext(c.Seed, t.TempDir(), c.Algorithm, c.EnvID,
		nil, zerolog.Disabled)
	require.NoError(t, ctx.Setup())
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func TestValidateRejectsUnknownTags(t *testing.T) {
	require.NoError(t, Validate(testConfig()))

	tests := []struct {
		key    string
		modify func(*config.Config)
	}{
		{"env_id", func(c *config.Config) { c.EnvID = "gym_walker" }},
		{"algorithm", func(c *config.Config) { c.Algorithm = "SAC" }},
		{"buffer_name", func(c *config.Config) { c.BufferName = "heap" }},
		{"trainer", func(c *config.Config) { c.Trainer = "on_serial" }},
		{"noise_type", func(c *config.Config) { c.NoiseType = "ou" }},
		{"optimizer", func(c *config.Config) { c.Optimizer = "SGDM" }},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			c := testConfig()
			test.modify(&c)

			var unknownTag *UnknownTagError
			err := Validate(c)
			require.True(t, errors.As(err, &unknownTag))
			assert.Equal(t, test.key, unknownTag.Key)
			assert.NotEmpty(t, unknownTag.Known)
		})
	}
}

func TestEnv(t *testing.T) {
	c := testConfig()
	env, err := Env(c, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, env.ObservationSpec().Dims())
	assert.Equal(t, 1, env.ActionSpec().Dims())
	_, shaped := env.(*wrappers.ShapingReward)
	assert.False(t, shaped)

	c.EnvID = string(PendulumSwingUp)
	c.RewardScale = 0.1
	env, err = Env(c, 1)
	require.NoError(t, err)
	_, shaped = env.(*wrappers.ShapingReward)
	assert.True(t, shaped)
}

func TestBufferAndNoise(t *testing.T) {
	c := testConfig()
	buffer, err := Buffer(c, 4, 1, 1)
	require.NoError(t, err)
	_, prioritized := buffer.(expreplay.PriorityUpdater)
	assert.False(t, prioritized)
	assert.Equal(t, 200, buffer.MaxCapacity())

	c.BufferName = string(expreplay.Prioritized)
	buffer, err = Buffer(c, 4, 1, 1)
	require.NoError(t, err)
	_, prioritized = buffer.(expreplay.PriorityUpdater)
	assert.True(t, prioritized)

	c.NoiseType = string(sampler.DecayingGaussian)
	c.NoiseDecay = 0.5
	noise, err := Noise(c, 1)
	require.NoError(t, err)
	assert.IsType(t, &sampler.Decaying{}, noise)
}

func TestEveryRegisteredTagBuilds(t *testing.T) {
	c := testConfig()
	c.NoiseDecay = 0.5

	for tag, create := range buffers {
		buffer, err := create(c, 4, 1, 1)
		require.NoError(t, err, tag)
		assert.Equal(t, c.BufferMaxSize, buffer.MaxCapacity(), tag)
	}

	for tag, create := range noises {
		noise, err := create(c, 1)
		require.NoError(t, err, tag)
		assert.NotNil(t, noise, tag)
	}

	for tag, create := range solvers {
		conf := create(c.ValueLearningRate, c.GradClip)
		assert.Equal(t, tag, conf.Type)
		s, err := conf.Create()
		require.NoError(t, err, tag)
		assert.NotNil(t, s, tag)
	}

	c.NumSamplers = 3
	assert.Equal(t, 1, trainers[experiment.OffSerialType].numWorkers(c))
	assert.Equal(t, 3, trainers[experiment.OffAsyncType].numWorkers(c))
}

func TestBuildAndTrain(t *testing.T) {
	for _, trainer := range []experiment.Type{experiment.OffSerialType,
		experiment.OffAsyncType} {
		t.Run(string(trainer), func(t *testing.T) {
			c := testConfig()
			c.Trainer = string(trainer)
			c.EvalSave = true
			ctx := newContext(t, c)

			run, err := Build(c, ctx, nil)
			require.NoError(t, err)
			require.NoError(t, run.Train(context.Background()))

			assert.Equal(t, experiment.Done, run.Trainer.State())
			assert.Equal(t, 40, run.Trainer.Iteration())

			assert.FileExists(t, ctx.Path(config.Filename))
			assert.FileExists(t, checkpointer.Filename(ctx.SaveFolder, 20))
			assert.FileExists(t, checkpointer.Filename(ctx.SaveFolder, 40))
			assert.FileExists(t, ctx.Path("evaluator", "returns_40.gob"))

			scalars, err := tracker.LoadScalars(ctx.Path(tracker.Filename))
			require.NoError(t, err)
			assert.Len(t, scalars[tracker.EvaluationAverageReturn], 2)
			assert.Len(t, scalars[tracker.LossCritic], 40)

			average, err := Evaluate(ctx.SaveFolder, -1, 2, zerolog.Nop())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, average, 1.0)
		})
	}
}

func TestBuildLoadsInitialApproximator(t *testing.T) {
	c := testConfig()
	first := newContext(t, c)
	run, err := Build(c, first, nil)
	require.NoError(t, err)
	require.NoError(t, run.Train(context.Background()))

	c.IniNetworkDir = first.SaveFolder
	_, err = Build(c, newContext(t, c), nil)
	assert.NoError(t, err)

	c.IniNetworkDir = t.TempDir()
	_, err = Build(c, newContext(t, c), nil)
	assert.Error(t, err)
}

func TestBuildRejectsUnknownTags(t *testing.T) {
	c := testConfig()
	c.EnvID = "gym_walker"
	_, err := Build(c, newContext(t, c), nil)
	assert.Error(t, err)
}
