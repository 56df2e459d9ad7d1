package create

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/samuelfneumann/gops/approximator"
	"github.com/samuelfneumann/gops/config"
	"github.com/samuelfneumann/gops/experiment"
	"github.com/samuelfneumann/gops/experiment/checkpointer"
	"github.com/samuelfneumann/gops/experiment/evaluator"
	"github.com/samuelfneumann/gops/experiment/tracker"
	"github.com/samuelfneumann/gops/utils/progressbar"
)

const progressWidth = 50

// Run is an assembled training run
type Run struct {
	Config       config.Config
	Context      *experiment.Context
	Trainer      experiment.Trainer
	Approximator approximator.Approximator

	tracker *tracker.Tracker
}

// Build assembles the training run described by c inside the save
// folder of ctx, which must already be set up. A snapshot of c is
// saved into the save folder. If progress is not nil, a progress bar
// is written to it.
func Build(c config.Config, ctx *experiment.Context,
	progress io.Writer) (*Run, error) {
	if err := Validate(c); err != nil {
		return nil, errors.Wrap(err, "build")
	}
	if err := c.Save(ctx.SaveFolder); err != nil {
		return nil, errors.Wrap(err, "build")
	}

	evalEnv, err := Env(c, ctx.WorkerSeed(experiment.EvaluatorSeedOffset))
	if err != nil {
		return nil, errors.Wrap(err, "build: evaluator environment")
	}
	obsSpec, actSpec := evalEnv.ObservationSpec(), evalEnv.ActionSpec()

	approx, err := Approximator(c, obsSpec, actSpec,
		ctx.WorkerSeed(experiment.ApproxSeedOffset))
	if err != nil {
		return nil, errors.Wrap(err, "build")
	}
	if c.IniNetworkDir != "" {
		filename, iteration, err := checkpointer.Latest(c.IniNetworkDir)
		if err != nil {
			return nil, errors.Wrap(err, "build: ini_network_dir")
		}
		if err := checkpointer.Load(filename, approx); err != nil {
			return nil, errors.Wrap(err, "build: ini_network_dir")
		}
		ctx.Logger.Info().
			Str("checkpoint", filename).
			Int("iteration", iteration).
			Msg("loaded initial approximator")
	}

	buffer, err := Buffer(c, obsSpec.Dims(), actSpec.Dims(),
		ctx.WorkerSeed(experiment.BufferSeedOffset))
	if err != nil {
		return nil, errors.Wrap(err, "build")
	}

	var evalDir string
	if c.EvalSave {
		evalDir = ctx.Path("evaluator")
	}
	eval, err := evaluator.New(evalEnv, c.NumEvalEpisode, evalDir,
		ctx.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "build")
	}

	metrics, err := tracker.New(ctx.SaveFolder)
	if err != nil {
		return nil, errors.Wrap(err, "build")
	}

	components := experiment.Components{
		Approximator: approx,
		Buffer:       buffer,
		Evaluator:    eval,
		Checkpointer: checkpointer.NewNStep(c.ApprfuncSaveInterval, approx,
			checkpointer.FilenameEnumerator(ctx.SaveFolder)),
		Metrics: metrics,
		Logger:  ctx.Logger,
	}
	if progress != nil {
		components.Progress = progressbar.NewManualProgressBar(progress,
			progressWidth, c.MaxIteration)
	}

	trainer, err := newTrainer(c, ctx, components)
	if err != nil {
		metrics.Close()
		return nil, errors.Wrap(err, "build")
	}

	return &Run{
		Config:       c,
		Context:      ctx,
		Trainer:      trainer,
		Approximator: approx,
		tracker:      metrics,
	}, nil
}

// newTrainer returns the configured Trainer. Every sampler gets its
// own environment and noise seeded with its own offset.
func newTrainer(c config.Config, ctx *experiment.Context,
	components experiment.Components) (experiment.Trainer, error) {
	create, ok := trainers[experiment.Type(c.Trainer)]
	if !ok {
		return nil, unknown("trainer", c.Trainer, trainers)
	}

	workers := make([]experiment.Worker, create.numWorkers(c))
	for i := range workers {
		seed := ctx.WorkerSeed(experiment.SamplerSeedOffset + uint64(i))
		env, err := Env(c, seed)
		if err != nil {
			return nil, errors.Wrapf(err, "worker %d", i)
		}
		noise, err := Noise(c, seed)
		if err != nil {
			return nil, errors.Wrapf(err, "worker %d", i)
		}
		workers[i] = experiment.Worker{Env: env, Noise: noise}
	}

	return create.create(c, components, workers)
}

// Train runs the trainer and closes the metrics log
func (r *Run) Train(ctx context.Context) error {
	err := r.Trainer.Train(ctx)
	if closeErr := r.tracker.Close(); err == nil {
		err = closeErr
	}
	return err
}
