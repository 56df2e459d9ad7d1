// Package create resolves the string tags of a configuration into the
// components of a training run. Each kind of component has a registry
// mapping a tag to a constructor. Tags are checked once, before any
// component is built, and an unknown tag is an error.
package create

import (
	"fmt"
	"sort"

	"github.com/samuelfneumann/gops/approximator"
	"github.com/samuelfneumann/gops/approximator/poly"
	"github.com/samuelfneumann/gops/config"
	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/gops/environment/classiccontrol/pendulum"
	"github.com/samuelfneumann/gops/environment/wrappers"
	"github.com/samuelfneumann/gops/experiment"
	"github.com/samuelfneumann/gops/expreplay"
	"github.com/samuelfneumann/gops/sampler"
	"github.com/samuelfneumann/gops/solver"
)

// EnvType is the tag of an environment
type EnvType string

const (
	CartpoleContinuous EnvType = "simu_cartpoleconti"
	PendulumSwingUp    EnvType = "pyth_pendulum"
)

// AlgType is the tag of a learning algorithm
type AlgType string

const (
	DDPG AlgType = "DDPG"
)

type envCreator func(maxEpisodeSteps int, seed uint64) (
	environment.Environment, error)

type algCreator func(c config.Config, obsSpec, actSpec environment.Spec,
	seed uint64) (approximator.Approximator, error)

var envs = map[EnvType]envCreator{
	CartpoleContinuous: func(steps int, seed uint64) (
		environment.Environment, error) {
		c, _, err := cartpole.New(cartpole.NewDefaultBalance(steps, seed), 1.0)
		return c, err
	},
	PendulumSwingUp: func(steps int, seed uint64) (
		environment.Environment, error) {
		p, _, err := pendulum.New(pendulum.NewDefaultSwingUp(steps, seed), 1.0)
		return p, err
	},
}

var algs = map[AlgType]algCreator{
	DDPG: func(c config.Config, obsSpec, actSpec environment.Spec,
		seed uint64) (approximator.Approximator, error) {
		return poly.New(PolyConfig(c), obsSpec, actSpec, seed)
	},
}

type bufferCreator func(c config.Config, featureSize, actionSize int,
	seed uint64) (expreplay.ExperienceReplayer, error)

// trainerCreator builds a trainer from the components shared by all
// samplers and one Worker per sampler. numWorkers returns how many
// Workers the trainer runs.
type trainerCreator struct {
	numWorkers func(c config.Config) int
	create     func(c config.Config, components experiment.Components,
		workers []experiment.Worker) (experiment.Trainer, error)
}

type noiseCreator func(c config.Config, seed uint64) (sampler.Noise, error)

type solverCreator func(stepSize, clip float64) solver.Config

var buffers = map[expreplay.Type]bufferCreator{
	expreplay.Uniform: func(c config.Config, featureSize, actionSize int,
		seed uint64) (expreplay.ExperienceReplayer, error) {
		return expreplay.New(c.BufferMaxSize, featureSize, actionSize, seed)
	},
	expreplay.Prioritized: func(c config.Config, featureSize,
		actionSize int, seed uint64) (expreplay.ExperienceReplayer, error) {
		return expreplay.Config{
			Type:        expreplay.Prioritized,
			MaxCapacity: c.BufferMaxSize,
			Alpha:       c.PriorityAlpha,
			Beta:        c.PriorityBeta,
			Epsilon:     c.PriorityEpsilon,
		}.Create(featureSize, actionSize, seed)
	},
}

var trainers = map[experiment.Type]trainerCreator{
	experiment.OffSerialType: {
		numWorkers: func(config.Config) int { return 1 },
		create: func(c config.Config, components experiment.Components,
			workers []experiment.Worker) (experiment.Trainer, error) {
			return experiment.NewOffSerial(components, Schedule(c),
				workers[0].Env, workers[0].Noise)
		},
	},
	experiment.OffAsyncType: {
		numWorkers: func(c config.Config) int { return c.NumSamplers },
		create: func(c config.Config, components experiment.Components,
			workers []experiment.Worker) (experiment.Trainer, error) {
			return experiment.NewOffAsync(components, Schedule(c), workers)
		},
	},
}

var noises = map[sampler.NoiseType]noiseCreator{
	sampler.NoNoise: func(config.Config, uint64) (sampler.Noise, error) {
		return sampler.None{}, nil
	},
	sampler.GaussianNoise: func(c config.Config, seed uint64) (
		sampler.Noise, error) {
		return sampler.NoiseConfig{
			Type: sampler.GaussianNoise,
			Std:  c.NoiseStd,
		}.Create(seed)
	},
	sampler.DecayingGaussian: func(c config.Config, seed uint64) (
		sampler.Noise, error) {
		return sampler.NoiseConfig{
			Type:   sampler.DecayingGaussian,
			Std:    c.NoiseStd,
			Decay:  c.NoiseDecay,
			MinStd: c.NoiseMinStd,
		}.Create(seed)
	},
}

var solvers = map[solver.Type]solverCreator{
	solver.Vanilla: solver.NewVanilla,
	solver.Adam: func(stepSize, clip float64) solver.Config {
		return solver.NewDefault(solver.Adam, stepSize, clip)
	},
	solver.RMSProp: func(stepSize, clip float64) solver.Config {
		return solver.NewDefault(solver.RMSProp, stepSize, clip)
	},
}

// UnknownTagError reports a configuration tag with no registered
// constructor
type UnknownTagError struct {
	Key   string
	Tag   string
	Known []string
}

func (u *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown %v %q, expected one of %v", u.Key, u.Tag,
		u.Known)
}

// Validate returns an error if any tag of c has no registered
// constructor
func Validate(c config.Config) error {
	if _, ok := envs[EnvType(c.EnvID)]; !ok {
		return unknown("env_id", c.EnvID, envs)
	}
	if _, ok := algs[AlgType(c.Algorithm)]; !ok {
		return unknown("algorithm", c.Algorithm, algs)
	}
	if _, ok := buffers[expreplay.Type(c.BufferName)]; !ok {
		return unknown("buffer_name", c.BufferName, buffers)
	}
	if _, ok := trainers[experiment.Type(c.Trainer)]; !ok {
		return unknown("trainer", c.Trainer, trainers)
	}
	if _, ok := noises[sampler.NoiseType(c.NoiseType)]; !ok {
		return unknown("noise_type", c.NoiseType, noises)
	}
	newSolver, ok := solvers[solver.Type(c.Optimizer)]
	if !ok {
		return unknown("optimizer", c.Optimizer, solvers)
	}

	for _, stepSize := range []float64{c.PolicyLearningRate,
		c.ValueLearningRate} {
		if err := newSolver(stepSize, c.GradClip).Validate(); err != nil {
			return fmt.Errorf("optimizer: %v", err)
		}
	}
	return nil
}

func unknown[K ~string, V any](key, tag string,
	registry map[K]V) *UnknownTagError {
	known := make([]string, 0, len(registry))
	for k := range registry {
		known = append(known, string(k))
	}
	sort.Strings(known)
	return &UnknownTagError{Key: key, Tag: tag, Known: known}
}

// Env returns a new environment of the configured type. Rewards are
// shaped by reward_shift and reward_scale unless they leave rewards
// unchanged.
func Env(c config.Config, seed uint64) (environment.Environment, error) {
	create, ok := envs[EnvType(c.EnvID)]
	if !ok {
		return nil, unknown("env_id", c.EnvID, envs)
	}

	env, err := create(c.MaxEpisodeSteps, seed)
	if err != nil {
		return nil, fmt.Errorf("env: %v", err)
	}

	if c.RewardShift != 0 || c.RewardScale != 1 {
		env = wrappers.NewShapingReward(env, c.RewardShift, c.RewardScale)
	}
	return env, nil
}

// Approximator returns a new approximator of the configured algorithm
func Approximator(c config.Config, obsSpec, actSpec environment.Spec,
	seed uint64) (approximator.Approximator, error) {
	create, ok := algs[AlgType(c.Algorithm)]
	if !ok {
		return nil, unknown("algorithm", c.Algorithm, algs)
	}
	return create(c, obsSpec, actSpec, seed)
}

// PolyConfig returns the polynomial actor-critic configuration held
// in c
func PolyConfig(c config.Config) poly.Config {
	return poly.Config{
		PolicyDegree:       c.PolicyDegree,
		ValueDegree:        c.ValueDegree,
		PolicyLearningRate: c.PolicyLearningRate,
		ValueLearningRate:  c.ValueLearningRate,
		Gamma:              c.Gamma,
		Tau:                c.Tau,
		DelayUpdate:        c.DelayUpdate,
		Optimizer:          solver.Type(c.Optimizer),
		InitStd:            c.InitStd,
		GradClip:           c.GradClip,
	}
}

// Buffer returns a new replay buffer of the configured type
func Buffer(c config.Config, featureSize, actionSize int,
	seed uint64) (expreplay.ExperienceReplayer, error) {
	create, ok := buffers[expreplay.Type(c.BufferName)]
	if !ok {
		return nil, unknown("buffer_name", c.BufferName, buffers)
	}
	return create(c, featureSize, actionSize, seed)
}

// Noise returns new exploration noise of the configured type
func Noise(c config.Config, seed uint64) (sampler.Noise, error) {
	create, ok := noises[sampler.NoiseType(c.NoiseType)]
	if !ok {
		return nil, unknown("noise_type", c.NoiseType, noises)
	}
	return create(c, seed)
}

// Schedule returns the trainer schedule held in c
func Schedule(c config.Config) experiment.Schedule {
	return experiment.Schedule{
		BufferWarmSize:       c.BufferWarmSize,
		ReplayBatchSize:      c.ReplayBatchSize,
		SampleInterval:       c.SampleInterval,
		SampleBatchSize:      c.SampleBatchSize,
		MaxIteration:         c.MaxIteration,
		EvalInterval:         c.EvalInterval,
		ApprfuncSaveInterval: c.ApprfuncSaveInterval,
		LogSaveInterval:      c.LogSaveInterval,
	}
}
