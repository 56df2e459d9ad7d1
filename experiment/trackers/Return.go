package trackers

import (
	ts "github.com/samuelfneumann/gops/timestep"
)

// Return tracks the episodic return of the episodes it observes. When
// an environment returns a TimeStep, this Tracker accumulates its
// reward into the return of the current episode. Once the last
// TimeStep of an episode is tracked, the return is recorded and
// accumulation restarts for the next episode.
//
// Returns are accumulated from the unshaped TimeStep.RawReward, so
// that reward shaping wrappers do not change the reported return.
//
// An episode must finish for its return to be recorded.
type Return struct {
	currentReturn  float64
	episodeReturns []float64
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn() *Return {
	return &Return{}
}

// Track tracks the reward of a TimeStep. First TimeSteps carry no
// reward and restart the current episode.
func (r *Return) Track(step ts.TimeStep) {
	if step.First() {
		r.currentReturn = 0.0
		return
	}

	r.currentReturn += step.RawReward
	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0.0
	}
}

// Returns returns the returns of all episodes finished so far
func (r *Return) Returns() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Flush returns the returns of all episodes finished since the last
// call to Flush and forgets them
func (r *Return) Flush() []float64 {
	returns := r.episodeReturns
	r.episodeReturns = nil
	return returns
}

// Save saves the returns of all finished episodes to disk
func (r *Return) Save(filename string) error {
	return save(filename, r.episodeReturns)
}
