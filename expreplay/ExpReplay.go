// Package expreplay implements fixed-capacity experience replay buffers
// for off-policy training. Buffers store transitions in a ring: once
// full, each insertion overwrites the oldest stored transition.
// Sampling draws transitions independently and with replacement, and
// deliberately discards temporal order.
//
// All buffers in this package are safe for concurrent use. Add and
// Sample are individually atomic, so concurrent samplers may insert
// into a buffer that a trainer is sampling from.
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/gops/timestep"
)

// Type is the type of an ExperienceReplayer
type Type string

const (
	Uniform     Type = "replay_buffer"
	Prioritized Type = "prioritized_replay_buffer"
)

// Config implements a specific configuration of an ExperienceReplayer
type Config struct {
	Type
	MaxCapacity int

	// Prioritized replay only
	Alpha   float64
	Beta    float64
	Epsilon float64
}

// Create creates and returns the ExperienceReplayer with the specified
// Config.
func (c Config) Create(featureSize, actionSize int,
	seed uint64) (ExperienceReplayer, error) {
	switch c.Type {
	case Uniform:
		return New(c.MaxCapacity, featureSize, actionSize, seed)

	case Prioritized:
		if c.Epsilon <= 0 || c.Alpha < 0 {
			return nil, fmt.Errorf("create: prioritized replay needs "+
				"epsilon > 0 and alpha >= 0, have epsilon=%v alpha=%v",
				c.Epsilon, c.Alpha)
		}
		strategy := Proportional{Alpha: c.Alpha, Epsilon: c.Epsilon}
		return NewPrioritized(c.MaxCapacity, featureSize, actionSize,
			strategy, c.Beta, seed)
	}

	return nil, fmt.Errorf("create: no such buffer type %q", c.Type)
}

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer, evicting the oldest
	// transition if the buffer is at capacity
	Add(t timestep.Transition) error

	// Sample samples batchSize transitions independently and with
	// replacement from the buffer
	Sample(batchSize int) (*Batch, error)

	// Len returns the current number of transitions in the buffer
	Len() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int

	// Warm returns whether the buffer holds at least warmSize
	// transitions
	Warm(warmSize int) bool
}

// PriorityUpdater is an ExperienceReplayer whose sampling distribution
// depends on per-transition priorities which can be updated after a
// batch has been learned from.
type PriorityUpdater interface {
	ExperienceReplayer

	// UpdatePriorities updates the priorities of the transitions at
	// the argument buffer indices using their latest TD errors
	UpdatePriorities(indices []int, tdErrors []float64) error
}
