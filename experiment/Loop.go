package experiment

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/samuelfneumann/gops/experiment/tracker"
	"github.com/samuelfneumann/gops/expreplay"
	"github.com/samuelfneumann/gops/sampler"
	ts "github.com/samuelfneumann/gops/timestep"
)

// loop implements the update side of a training loop shared by all
// Trainers: one replayed batch and one update per iteration, followed
// by the periodic side effects
type loop struct {
	Components
	Schedule

	policies *sampler.PolicyStore
	stats    *samplerStats
	logger   zerolog.Logger

	mu        sync.Mutex // Guards iteration and state
	iteration int
	state     State
}

func newLoop(c Components, s Schedule, component string) (*loop, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.BufferWarmSize > c.Buffer.MaxCapacity() {
		return nil, errors.Errorf("buffer warm size %v exceeds buffer "+
			"capacity %v", s.BufferWarmSize, c.Buffer.MaxCapacity())
	}

	return &loop{
		Components: c,
		Schedule:   s,
		policies:   sampler.NewPolicyStore(c.Approximator.Policy()),
		stats:      &samplerStats{},
		logger:     c.Logger.With().Str("component", component).Logger(),
		state:      Warmup,
	}, nil
}

// Iteration returns the number of completed training iterations
func (l *loop) Iteration() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.iteration
}

// State returns the current state of the loop
func (l *loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()

	l.logger.Info().
		Str("state", s.String()).
		Int("iteration", l.Iteration()).
		Int("buffer_size", l.Buffer.Len()).
		Msg("trainer state changed")
}

// done returns whether the maximum iteration has been reached
func (l *loop) done() bool {
	return l.Iteration() >= l.MaxIteration
}

// store inserts sampled transitions into the buffer and records the
// sampler statistics
func (l *loop) store(transitions []ts.Transition, stats sampler.Stats) error {
	for _, t := range transitions {
		if err := l.Buffer.Add(t); err != nil {
			return errors.Wrap(err, "store")
		}
	}
	l.stats.add(stats)
	return nil
}

// update performs one training iteration: draw a batch, update the
// approximator, publish the new policy, increment the counter, and run
// the periodic side effects
func (l *loop) update() error {
	iteration := l.Iteration() + 1

	batch, err := l.Buffer.Sample(l.ReplayBatchSize)
	if err != nil {
		return errors.Wrapf(err, "update: iteration %d", iteration)
	}

	result, err := l.Approximator.Update(batch, iteration)
	if err != nil {
		return errors.Wrapf(err, "update: iteration %d", iteration)
	}

	if p, ok := l.Buffer.(expreplay.PriorityUpdater); ok {
		err := p.UpdatePriorities(batch.Indices, result.TDErrors)
		if err != nil {
			return errors.Wrapf(err, "update: iteration %d", iteration)
		}
	}

	l.policies.Publish(l.Approximator.Policy())

	l.mu.Lock()
	l.iteration = iteration
	l.mu.Unlock()

	l.record(result.Metrics, iteration)
	if l.Progress != nil {
		l.Progress.Increment()
		l.Progress.Display()
	}

	return l.periodic(iteration)
}

// record adds the metrics of an iteration to the metrics sink
func (l *loop) record(metrics map[string]float64, iteration int) {
	l.Metrics.AddScalars(metrics, iteration)
	l.Metrics.AddScalar(tracker.BufferSize, float64(l.Buffer.Len()),
		iteration)

	duration, returns, ok := l.stats.drain()
	if ok {
		l.Metrics.AddScalar(tracker.SamplerTime,
			float64(duration.Microseconds())/1000, iteration)
	}
	for _, r := range returns {
		l.Metrics.AddScalar(tracker.EpisodeReturn, r, iteration)
	}
}

// periodic runs the evaluation, checkpoint, and metric flush side
// effects due at iteration
func (l *loop) periodic(iteration int) error {
	if every(iteration, l.EvalInterval) {
		average, err := l.Evaluator.Evaluate(l.Approximator.Policy(),
			iteration)
		if err != nil {
			return errors.Wrapf(err, "periodic: iteration %d", iteration)
		}
		l.Metrics.AddScalar(tracker.EvaluationAverageReturn, average,
			iteration)
	}

	if every(iteration, l.ApprfuncSaveInterval) {
		if err := l.Checkpointer.Checkpoint(iteration); err != nil {
			return errors.Wrapf(err, "periodic: iteration %d", iteration)
		}
	}

	if every(iteration, l.LogSaveInterval) {
		if err := l.Metrics.Flush(); err != nil {
			return errors.Wrapf(err, "periodic: iteration %d", iteration)
		}
		l.logger.Info().
			Int("iteration", iteration).
			Int("buffer_size", l.Buffer.Len()).
			Msg("metrics flushed")
	}

	return nil
}

// finish moves the loop to Done and flushes the remaining metrics
func (l *loop) finish() error {
	l.setState(Done)
	return errors.Wrap(l.Metrics.Flush(), "finish")
}

func every(iteration, interval int) bool {
	return interval > 0 && iteration%interval == 0
}

// samplerStats accumulates sampler statistics between iterations. It
// is safe for concurrent use.
type samplerStats struct {
	mu       sync.Mutex
	calls    int
	duration time.Duration
	returns  []float64
}

func (s *samplerStats) add(stats sampler.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.duration += stats.Duration
	s.returns = append(s.returns, stats.EpisodeReturns...)
}

// drain returns the average sampler call duration and the finished
// episode returns since the last drain. The bool reports whether the
// sampler was called since the last drain.
func (s *samplerStats) drain() (time.Duration, []float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls == 0 {
		return 0, nil, false
	}
	duration := s.duration / time.Duration(s.calls)
	returns := s.returns

	s.calls, s.duration, s.returns = 0, 0, nil
	return duration, returns, true
}
