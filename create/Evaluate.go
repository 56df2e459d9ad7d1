package create

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/samuelfneumann/gops/config"
	"github.com/samuelfneumann/gops/experiment"
	"github.com/samuelfneumann/gops/experiment/checkpointer"
	"github.com/samuelfneumann/gops/experiment/evaluator"
)

// Evaluate loads the checkpoint of a finished run and returns the
// average return of numEpisodes deterministic episodes. The run's
// configuration is read from its save folder dir. If iteration is
// negative, the latest checkpoint is evaluated.
func Evaluate(dir string, iteration, numEpisodes int,
	logger zerolog.Logger) (float64, error) {
	c, err := config.Load(filepath.Join(dir, config.Filename), nil)
	if err != nil {
		return 0, errors.Wrap(err, "evaluate")
	}
	if err := Validate(c); err != nil {
		return 0, errors.Wrap(err, "evaluate")
	}

	filename := checkpointer.Filename(dir, iteration)
	if iteration < 0 {
		filename, iteration, err = checkpointer.Latest(dir)
		if err != nil {
			return 0, errors.Wrap(err, "evaluate")
		}
	}

	env, err := Env(c, c.Seed+experiment.EvaluatorSeedOffset)
	if err != nil {
		return 0, errors.Wrap(err, "evaluate")
	}
	approx, err := Approximator(c, env.ObservationSpec(), env.ActionSpec(),
		c.Seed+experiment.ApproxSeedOffset)
	if err != nil {
		return 0, errors.Wrap(err, "evaluate")
	}
	if err := checkpointer.Load(filename, approx); err != nil {
		return 0, errors.Wrap(err, "evaluate")
	}

	eval, err := evaluator.New(env, numEpisodes, "", logger)
	if err != nil {
		return 0, errors.Wrap(err, "evaluate")
	}
	return eval.Evaluate(approx.Policy(), iteration)
}
