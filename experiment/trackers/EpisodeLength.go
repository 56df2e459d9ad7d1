package trackers

import (
	"github.com/samuelfneumann/gops/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes. An episode
// must finish for its length to be recorded.
type EpisodeLength struct {
	episodeLengths []int
}

// NewEpisodeLength returns a new EpisodeLength Tracker
func NewEpisodeLength() *EpisodeLength {
	return &EpisodeLength{}
}

// Track caches the episode length if the argument TimeStep is the last
// in its episode
func (e *EpisodeLength) Track(t timestep.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, t.Number)
	}
}

// Lengths returns the lengths of all episodes finished so far
func (e *EpisodeLength) Lengths() []int {
	return append([]int(nil), e.episodeLengths...)
}

// Save saves the episode lengths to disk
func (e *EpisodeLength) Save(filename string) error {
	return save(filename, e.episodeLengths)
}
