// Package experiment implements off-policy training runs. A Trainer
// alternates between collecting transitions into an experience replay
// buffer and updating an approximator on batches replayed from it,
// with periodic evaluation, checkpointing, and metrics flushing.
//
// Every Trainer moves through the same states:
//
//	Warmup -> Training -> Done
//
// During Warmup, transitions are collected until the buffer is warm;
// no updates are performed. During Training, each iteration draws one
// batch and performs one update. Done is reached once the iteration
// counter reaches the maximum iteration, after which no sampling or
// buffer activity occurs.
package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/samuelfneumann/gops/approximator"
	"github.com/samuelfneumann/gops/experiment/checkpointer"
	"github.com/samuelfneumann/gops/expreplay"
	"github.com/samuelfneumann/gops/utils/progressbar"
)

// Type is the type of a Trainer
type Type string

const (
	OffSerialType Type = "off_serial_trainer"
	OffAsyncType  Type = "off_async_trainer"
)

// State is the state of a Trainer
type State int

const (
	Warmup State = iota
	Training
	Done
)

func (s State) String() string {
	switch s {
	case Warmup:
		return "Warmup"
	case Training:
		return "Training"
	case Done:
		return "Done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Trainer runs an off-policy training loop
type Trainer interface {
	// Train runs the loop until Done, an error occurs, or ctx is
	// cancelled. Errors are never retried.
	Train(ctx context.Context) error

	// Iteration returns the number of completed training iterations
	Iteration() int

	// State returns the current state of the Trainer
	State() State
}

// Schedule determines the batch sizes and periods of a training loop.
// Periodic side effects run at iteration i when i is a multiple of
// their interval.
type Schedule struct {
	BufferWarmSize  int
	ReplayBatchSize int

	// SampleInterval is the number of iterations between two calls to
	// the sampler. Each call collects SampleBatchSize steps.
	SampleInterval  int
	SampleBatchSize int

	MaxIteration         int
	EvalInterval         int
	ApprfuncSaveInterval int
	LogSaveInterval      int
}

// Validate returns an error if the Schedule is not valid
func (s Schedule) Validate() error {
	positive := map[string]int{
		"buffer_warm_size":       s.BufferWarmSize,
		"replay_batch_size":      s.ReplayBatchSize,
		"sample_interval":        s.SampleInterval,
		"sample_batch_size":      s.SampleBatchSize,
		"max_iteration":          s.MaxIteration,
		"eval_interval":          s.EvalInterval,
		"apprfunc_save_interval": s.ApprfuncSaveInterval,
		"log_save_interval":      s.LogSaveInterval,
	}
	for name, value := range positive {
		if value < 1 {
			return fmt.Errorf("validate: %v must be >= 1, have %v", name,
				value)
		}
	}
	return nil
}

// Evaluator evaluates policies
type Evaluator interface {
	Evaluate(policy approximator.Policy, iteration int) (float64, error)
}

// MetricsSink accumulates scalar metrics and flushes them to a log
type MetricsSink interface {
	AddScalar(tag string, value float64, step int)
	AddScalars(metrics map[string]float64, step int)
	Flush() error
}

// Components are the collaborators of a Trainer
type Components struct {
	Approximator approximator.Approximator
	Buffer       expreplay.ExperienceReplayer
	Evaluator    Evaluator
	Checkpointer checkpointer.Checkpointer
	Metrics      MetricsSink
	Logger       zerolog.Logger

	// Progress is optional
	Progress *progressbar.ManualProgressBar
}

// Validate returns an error if a required component is missing
func (c Components) Validate() error {
	switch {
	case c.Approximator == nil:
		return fmt.Errorf("validate: missing approximator")
	case c.Buffer == nil:
		return fmt.Errorf("validate: missing buffer")
	case c.Evaluator == nil:
		return fmt.Errorf("validate: missing evaluator")
	case c.Checkpointer == nil:
		return fmt.Errorf("validate: missing checkpointer")
	case c.Metrics == nil:
		return fmt.Errorf("validate: missing metrics sink")
	}
	return nil
}
