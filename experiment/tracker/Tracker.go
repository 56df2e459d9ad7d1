// Package tracker implements the metrics sink of a training run.
// Scalars are accumulated in memory and flushed to an append-only
// JSON-lines log, one object per scalar:
//
//	{"level":"info","tag":"Loss/loss_critic","step":100,"value":0.31,"time":"..."}
//
// The log can be exported to per-tag CSV files for plotting.
package tracker

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Fixed tag vocabulary
const (
	LossActor               = "Loss/loss_actor"
	LossCritic              = "Loss/loss_critic"
	AlgTime                 = "Time/alg_time"
	SamplerTime             = "Time/sampler_time"
	EvaluationAverageReturn = "Evaluation/total_average_return"
	CriticAverageValue      = "Train/critic_average_value"
	BufferSize              = "Train/buffer_size"
	EpisodeReturn           = "Train/episode_return"
)

// Filename is the name of the metrics log inside a save folder
const Filename = "metrics.jsonl"

// Scalar is a single logged value
type Scalar struct {
	Tag   string
	Step  int
	Value float64
}

// Tracker accumulates scalars and flushes them to the metrics log. It
// is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	file    *os.File
	sink    zerolog.Logger
	pending []Scalar
}

// New returns a Tracker appending to the metrics log in dir
func New(dir string) (*Tracker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "new: could not create save folder")
	}

	file, err := os.OpenFile(filepath.Join(dir, Filename),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "new: could not open metrics log")
	}

	return &Tracker{
		file: file,
		sink: zerolog.New(file).With().Timestamp().Logger(),
	}, nil
}

// AddScalar records a value for tag at step. The value is written at
// the next Flush.
func (t *Tracker) AddScalar(tag string, value float64, step int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = append(t.pending, Scalar{Tag: tag, Step: step, Value: value})
}

// AddScalars records every value of metrics at step
func (t *Tracker) AddScalars(metrics map[string]float64, step int) {
	for tag, value := range metrics {
		t.AddScalar(tag, value, step)
	}
}

// Pending returns the number of scalars not yet flushed
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.pending)
}

// Flush writes all accumulated scalars to the metrics log
func (t *Tracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.flush()
}

func (t *Tracker) flush() error {
	for _, s := range t.pending {
		t.sink.Info().
			Str("tag", s.Tag).
			Int("step", s.Step).
			Float64("value", s.Value).
			Send()
	}
	t.pending = t.pending[:0]

	return errors.Wrap(t.file.Sync(), "flush")
}

// Close flushes the remaining scalars and closes the metrics log
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.flush(); err != nil {
		t.file.Close()
		return err
	}
	return errors.Wrap(t.file.Close(), "close")
}
