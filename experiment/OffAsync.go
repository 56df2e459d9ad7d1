package experiment

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/sampler"
)

// Worker is the environment and exploration noise of one sampler
// goroutine. Each worker needs its own environment instance.
type Worker struct {
	Env   environment.Environment
	Noise sampler.Noise
}

// OffAsync is a Trainer which runs one sampler goroutine per Worker
// alongside a single trainer goroutine. Samplers insert into the
// shared buffer concurrently while the trainer replays from it; the
// buffer is the only synchronization point between them. The trainer
// publishes a new policy snapshot after every update, which samplers
// pick up on their next step.
//
// Reaching the maximum iteration stops all samplers, after which the
// Trainer is Done. Any error stops every goroutine
// and is returned by Train.
type OffAsync struct {
	*loop
	samplers []*sampler.OffSampler

	// warmed is signalled by samplers after each insertion so that the
	// trainer can check whether the buffer is warm
	warmed chan struct{}
}

// NewOffAsync returns a new asynchronous Trainer with one sampler per
// worker
func NewOffAsync(c Components, s Schedule,
	workers []Worker) (*OffAsync, error) {
	if len(workers) == 0 {
		return nil, errors.New("newOffAsync: at least one worker needed")
	}

	l, err := newLoop(c, s, "off_async_trainer")
	if err != nil {
		return nil, errors.Wrap(err, "newOffAsync")
	}

	samplers := make([]*sampler.OffSampler, len(workers))
	for i, w := range workers {
		logger := c.Logger.With().Int("worker", i).Logger()
		samplers[i] = sampler.New(w.Env, l.policies, w.Noise, logger)
	}

	return &OffAsync{
		loop:     l,
		samplers: samplers,
		warmed:   make(chan struct{}, 1),
	}, nil
}

// Train runs the training loop
func (o *OffAsync) Train(ctx context.Context) error {
	if o.State() != Warmup {
		return errors.New("train: trainer already ran")
	}

	g, gctx := errgroup.WithContext(ctx)
	samplerCtx, stopSamplers := context.WithCancel(gctx)
	defer stopSamplers()

	for i, s := range o.samplers {
		i, s := i, s
		g.Go(func() error {
			return errors.Wrapf(o.runSampler(samplerCtx, s), "sampler %d", i)
		})
	}

	g.Go(func() error {
		defer stopSamplers()
		return o.runTrainer(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// All samplers have stopped
	return o.finish()
}

// runSampler collects transitions into the buffer until ctx is done
func (o *OffAsync) runSampler(ctx context.Context,
	s *sampler.OffSampler) error {
	for ctx.Err() == nil {
		transitions, stats, err := s.Sample(o.SampleBatchSize)
		if err != nil {
			return err
		}
		if err := o.store(transitions, stats); err != nil {
			return err
		}

		select {
		case o.warmed <- struct{}{}:
		default:
		}
	}
	return nil
}

// runTrainer waits for the buffer to warm up and then updates until
// the maximum iteration is reached
func (o *OffAsync) runTrainer(ctx context.Context) error {
	for !o.Buffer.Warm(o.BufferWarmSize) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.warmed:
		}
	}
	o.setState(Training)

	for !o.done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.update(); err != nil {
			return errors.Wrap(err, "train")
		}
	}
	return nil
}
