// Package approximator defines the interface between the trainer and
// the function approximators it updates. Approximators hold the
// learnable parameters of an algorithm; the trainer only ever sees
// them through a Policy snapshot, an Update on a batch of replayed
// transitions, and a serialized state dict.
package approximator

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/experiment/tracker"
	"github.com/samuelfneumann/gops/expreplay"
)

// Metric tags reported in Result.Metrics
const (
	LossActor          = tracker.LossActor
	LossCritic         = tracker.LossCritic
	AlgTime            = tracker.AlgTime
	CriticAverageValue = tracker.CriticAverageValue
)

// ErrDiverged is reported when an update produces NaN or Inf values.
// Divergence is never recovered from.
var ErrDiverged = errors.New("numerical divergence")

// IsDiverged returns whether err reports numerical divergence
func IsDiverged(err error) bool {
	return errors.Is(err, ErrDiverged)
}

// Diverged returns an error wrapping ErrDiverged that reports which
// quantity diverged
func Diverged(quantity string, iteration int) error {
	return fmt.Errorf("%w: %v at iteration %d", ErrDiverged, quantity,
		iteration)
}

// Policy maps observations to actions. Policies returned by an
// Approximator are snapshots: they never change after being returned
// and are safe for concurrent use.
type Policy interface {
	// Act returns the deterministic action taken in obs
	Act(obs mat.Vector) (*mat.VecDense, error)
}

// Result is the outcome of a single Update
type Result struct {
	// Metrics maps metric tags to scalar values
	Metrics map[string]float64

	// TDErrors holds the TD error of each transition in the batch,
	// used to update priorities of prioritized buffers
	TDErrors []float64
}

// Approximator implements the learnable part of an off-policy
// algorithm
type Approximator interface {
	// Policy returns a snapshot of the current policy
	Policy() Policy

	// Update performs a single update using a batch of transitions.
	// The iteration is the 1-based training iteration.
	Update(b *expreplay.Batch, iteration int) (Result, error)

	// StateDict serializes all parameters
	StateDict() ([]byte, error)

	// LoadStateDict restores parameters serialized by StateDict
	LoadStateDict(data []byte) error
}
