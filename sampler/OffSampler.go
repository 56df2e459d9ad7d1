// Package sampler implements samplers, which generate transitions for
// off-policy training by interacting with an environment using the
// most recently published policy plus exploration noise.
package sampler

import (
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/experiment/trackers"
	ts "github.com/samuelfneumann/gops/timestep"
)

// ErrNoPolicy is reported when a sampler steps before any policy has
// been published
var ErrNoPolicy = errors.New("no policy published")

// Stats summarizes a call to Sample
type Stats struct {
	Steps    int
	Duration time.Duration

	// EpisodeReturns holds the returns of episodes which finished
	// during the call
	EpisodeReturns []float64
}

// OffSampler steps an environment and returns the resulting
// transitions. Episode boundaries are handled transparently: once an
// episode ends, the next step resets the environment.
//
// An OffSampler owns its environment and is not safe for concurrent
// use; concurrent sampling uses one OffSampler per goroutine.
type OffSampler struct {
	env      environment.Environment
	policies *PolicyStore
	noise    Noise
	returns  *trackers.Return
	logger   zerolog.Logger

	step       ts.TimeStep
	needsReset bool
	totalSteps int
	episodes   int
}

// New returns a new OffSampler. The environment is reset on the first
// step.
func New(env environment.Environment, policies *PolicyStore, noise Noise,
	logger zerolog.Logger) *OffSampler {
	if noise == nil {
		noise = None{}
	}

	return &OffSampler{
		env:        env,
		policies:   policies,
		noise:      noise,
		returns:    trackers.NewReturn(),
		logger:     logger.With().Str("component", "sampler").Logger(),
		needsReset: true,
	}
}

// SampleOneStep advances the environment by one step using the
// published policy's action plus exploration noise, clipped to the
// action bounds. It returns the resulting transition and whether the
// episode ended.
func (o *OffSampler) SampleOneStep() (ts.Transition, bool, error) {
	if o.needsReset {
		step, err := o.env.Reset()
		if err != nil {
			return ts.Transition{}, false, pkgerrors.Wrap(err,
				"sampleOneStep: could not reset environment")
		}
		o.step = step
		o.needsReset = false
		o.returns.Track(step)
	}

	policy := o.policies.Load()
	if policy == nil {
		return ts.Transition{}, false, ErrNoPolicy
	}

	action, err := policy.Act(o.step.Observation)
	if err != nil {
		return ts.Transition{}, false, pkgerrors.Wrap(err,
			"sampleOneStep: could not select action")
	}
	o.noise.Perturb(action)
	o.env.ActionSpec().Clip(action)

	next, done, err := o.env.Step(action)
	if err != nil {
		return ts.Transition{}, false, pkgerrors.Wrapf(err,
			"sampleOneStep: environment step %d", o.totalSteps)
	}
	done = done || next.Last()
	if done {
		next.StepType = ts.Last
	}

	transition := ts.NewTransition(o.step, mat.VecDenseCopyOf(action), next)
	o.totalSteps++
	o.returns.Track(next)

	if done {
		o.episodes++
		o.needsReset = true
		o.logger.Debug().
			Int("episode", o.episodes).
			Int("episode_steps", next.Number).
			Int("total_steps", o.totalSteps).
			Msg("episode finished")
	} else {
		o.step = next
	}

	return transition, done, nil
}

// Sample performs n steps and returns the generated transitions
func (o *OffSampler) Sample(n int) ([]ts.Transition, Stats, error) {
	start := time.Now()
	transitions := make([]ts.Transition, 0, n)

	for i := 0; i < n; i++ {
		transition, _, err := o.SampleOneStep()
		if err != nil {
			return transitions, Stats{}, err
		}
		transitions = append(transitions, transition)
	}

	return transitions, Stats{
		Steps:          n,
		Duration:       time.Since(start),
		EpisodeReturns: o.returns.Flush(),
	}, nil
}

// TotalSteps returns the number of environment steps taken
func (o *OffSampler) TotalSteps() int {
	return o.totalSteps
}
