package experiment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/sampler"
)

// OffSerial is a Trainer which samples and updates on a single
// goroutine in strict alternation
type OffSerial struct {
	*loop
	sampler *sampler.OffSampler
}

// NewOffSerial returns a new serial Trainer. The environment is
// stepped by the Trainer's sampler only and must not be shared with
// the evaluator.
func NewOffSerial(c Components, s Schedule, env environment.Environment,
	noise sampler.Noise) (*OffSerial, error) {
	l, err := newLoop(c, s, "off_serial_trainer")
	if err != nil {
		return nil, errors.Wrap(err, "newOffSerial")
	}

	return &OffSerial{
		loop:    l,
		sampler: sampler.New(env, l.policies, noise, c.Logger),
	}, nil
}

// Train runs the training loop
func (o *OffSerial) Train(ctx context.Context) error {
	if o.State() != Warmup {
		return errors.New("train: trainer already ran")
	}

	for !o.Buffer.Warm(o.BufferWarmSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.sample(); err != nil {
			return errors.Wrap(err, "train: warmup")
		}
	}
	o.setState(Training)

	for !o.done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Sample once every SampleInterval iterations
		if o.Iteration()%o.SampleInterval == 0 {
			if err := o.sample(); err != nil {
				return errors.Wrapf(err, "train: iteration %d",
					o.Iteration()+1)
			}
		}

		if err := o.update(); err != nil {
			return errors.Wrap(err, "train")
		}
	}

	return o.finish()
}

func (o *OffSerial) sample() error {
	transitions, stats, err := o.sampler.Sample(o.SampleBatchSize)
	if err != nil {
		return err
	}
	return o.store(transitions, stats)
}
