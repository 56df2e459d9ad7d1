package expreplay

import (
	"sync"

	"github.com/samuelfneumann/gops/timestep"
)

// uniformBuffer implements a concrete ExperienceReplayer which stores
// transitions in a ring and samples them uniformly at random
type uniformBuffer struct {
	mu      sync.Mutex // Guards the cache and the sampler's RNG
	cache   *cache
	sampler Selector
}

// New creates and returns a new uniformly sampled ExperienceReplayer.
// The featureSize and actionSize parameters define the size of the
// feature and action vectors. The maxCapacity parameter determines the
// maximum number of samples allowed in the buffer at any given time.
//
// Pixel observations should be flattened before adding to the buffer.
func New(maxCapacity, featureSize, actionSize int,
	seed uint64) (ExperienceReplayer, error) {
	c, err := newCache(maxCapacity, featureSize, actionSize)
	if err != nil {
		return nil, err
	}

	return &uniformBuffer{
		cache:   c,
		sampler: NewUniformSelector(seed),
	}, nil
}

// Add adds a transition to the buffer, overwriting the oldest
// transition when the buffer is full
func (u *uniformBuffer) Add(t timestep.Transition) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.cache.validate(t); err != nil {
		return err
	}
	u.cache.write(t)
	return nil
}

// Sample samples and returns a batch of batchSize transitions drawn
// uniformly, independently, and with replacement from the buffer.
// batchSize may exceed the number of stored transitions.
func (u *uniformBuffer) Sample(batchSize int) (*Batch, error) {
	if batchSize < 1 {
		return nil, &ExpReplayError{Op: "sample", Err: ErrInvalidBatchSize}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	size := u.cache.len()
	if size == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: ErrInsufficientData}
	}

	indices := u.sampler.choose(batchSize, size)
	return u.cache.gather(indices), nil
}

// Len returns the current number of transitions in the buffer
func (u *uniformBuffer) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.cache.len()
}

// MaxCapacity returns the maximum number of transitions that are
// allowed in the buffer
func (u *uniformBuffer) MaxCapacity() int {
	return u.cache.maxCapacity
}

// Warm returns whether the buffer holds at least warmSize transitions
func (u *uniformBuffer) Warm(warmSize int) bool {
	return u.Len() >= warmSize
}

// Contents returns copies of all stored transitions, from the oldest
// to the most recently inserted
func (u *uniformBuffer) Contents() []timestep.Transition {
	u.mu.Lock()
	defer u.mu.Unlock()

	return contents(u.cache)
}

// String returns the string representation of the buffer
func (u *uniformBuffer) String() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.cache.String()
}

// contents returns the transitions stored in c in insertion order
func contents(c *cache) []timestep.Transition {
	b := c.gather(c.ordered())
	out := make([]timestep.Transition, b.Size())
	for i := range out {
		out[i] = b.Transition(i)
	}
	return out
}
