// Package evaluator implements evaluation of policies by deterministic
// rollouts on an environment reserved for evaluation
package evaluator

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/gops/approximator"
	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/experiment/trackers"
	ts "github.com/samuelfneumann/gops/timestep"
)

// Evaluator runs a number of episodes with a policy, taking the
// policy's action without exploration noise, and reports the average
// episodic return. The Evaluator owns its environment, which must not
// be shared with any sampler.
type Evaluator struct {
	env         environment.Environment
	numEpisodes int
	logger      zerolog.Logger

	// saveDir holds per-evaluation episode returns when non-empty
	saveDir string

	evaluations int
}

// New returns a new Evaluator. If saveDir is not empty, the episode
// returns of each evaluation are saved in saveDir.
func New(env environment.Environment, numEpisodes int, saveDir string,
	logger zerolog.Logger) (*Evaluator, error) {
	if numEpisodes < 1 {
		return nil, fmt.Errorf("new: number of episodes must be >= 1")
	}

	if saveDir != "" {
		if err := os.MkdirAll(saveDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "new: could not create save folder")
		}
	}

	return &Evaluator{
		env:         env,
		numEpisodes: numEpisodes,
		saveDir:     saveDir,
		logger:      logger.With().Str("component", "evaluator").Logger(),
	}, nil
}

// Evaluate runs the evaluation episodes with policy and returns the
// average return. The iteration keys saved evaluation data.
func (e *Evaluator) Evaluate(policy approximator.Policy,
	iteration int) (float64, error) {
	start := time.Now()
	returns := trackers.NewReturn()
	lengths := trackers.NewEpisodeLength()

	for i := 0; i < e.numEpisodes; i++ {
		if err := e.runEpisode(policy, returns, lengths); err != nil {
			return 0, errors.Wrapf(err, "evaluate: episode %d", i)
		}
	}

	episodeReturns := returns.Returns()
	average := stat.Mean(episodeReturns, nil)
	e.evaluations++

	if e.saveDir != "" {
		filename := filepath.Join(e.saveDir,
			fmt.Sprintf("returns_%v.gob", iteration))
		if err := returns.Save(filename); err != nil {
			return 0, errors.Wrap(err, "evaluate")
		}
		filename = filepath.Join(e.saveDir,
			fmt.Sprintf("lengths_%v.gob", iteration))
		if err := lengths.Save(filename); err != nil {
			return 0, errors.Wrap(err, "evaluate")
		}
	}

	e.logger.Info().
		Int("iteration", iteration).
		Float64("average_return", average).
		Int("episodes", e.numEpisodes).
		Dur("elapsed", time.Since(start)).
		Msg("evaluation finished")

	return average, nil
}

// Evaluations returns the number of completed evaluations
func (e *Evaluator) Evaluations() int {
	return e.evaluations
}

func (e *Evaluator) runEpisode(policy approximator.Policy,
	recorders ...trackers.Tracker) error {
	step, err := e.env.Reset()
	if err != nil {
		return errors.Wrap(err, "could not reset environment")
	}
	for _, t := range recorders {
		t.Track(step)
	}

	for done := false; !done; {
		action, err := policy.Act(step.Observation)
		if err != nil {
			return errors.Wrap(err, "could not select action")
		}
		e.env.ActionSpec().Clip(action)

		step, done, err = e.env.Step(action)
		if err != nil {
			return errors.Wrap(err, "environment step")
		}

		done = done || step.Last()
		if done {
			step.StepType = ts.Last
		}
		for _, t := range recorders {
			t.Track(step)
		}
	}
	return nil
}
