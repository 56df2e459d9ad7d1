package expreplay

import (
	"fmt"
	"math"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gops/timestep"
)

// prioritizedBuffer implements a concrete ExperienceReplayer which
// samples transitions with probability proportional to their priority.
// Newly added transitions receive the largest priority seen so far, so
// that each transition is likely to be sampled at least once.
//
// Capacity, ring eviction, and warm gating are identical to the
// uniform buffer.
type prioritizedBuffer struct {
	mu    sync.Mutex // Guards all fields below
	cache *cache
	tree  *sumTree
	rng   *rand.Rand

	strategy    PriorityStrategy
	maxPriority float64

	// beta is the importance sampling exponent. Weights are
	// (N * P(i))^-β normalized by the largest weight.
	beta float64
}

// NewPrioritized returns a new prioritized ExperienceReplayer. The
// strategy determines how TD errors are converted into priorities, and
// beta is the importance sampling exponent in [0, 1].
func NewPrioritized(maxCapacity, featureSize, actionSize int,
	strategy PriorityStrategy, beta float64,
	seed uint64) (PriorityUpdater, error) {
	if beta < 0 || beta > 1 {
		return nil, fmt.Errorf("newPrioritized: beta must be in [0, 1], "+
			"have %v", beta)
	}
	if strategy == nil {
		return nil, fmt.Errorf("newPrioritized: nil priority strategy")
	}

	c, err := newCache(maxCapacity, featureSize, actionSize)
	if err != nil {
		return nil, err
	}

	return &prioritizedBuffer{
		cache:       c,
		tree:        newSumTree(maxCapacity),
		rng:         rand.New(rand.NewSource(seed)),
		strategy:    strategy,
		maxPriority: 1.0,
		beta:        beta,
	}, nil
}

// Add adds a transition to the buffer with the maximum priority seen
// so far
func (p *prioritizedBuffer) Add(t timestep.Transition) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.cache.validate(t); err != nil {
		return err
	}
	index := p.cache.write(t)
	p.tree.set(index, p.maxPriority)
	return nil
}

// Sample samples batchSize transitions independently and with
// replacement, each with probability proportional to its priority
func (p *prioritizedBuffer) Sample(batchSize int) (*Batch, error) {
	if batchSize < 1 {
		return nil, &ExpReplayError{Op: "sample", Err: ErrInvalidBatchSize}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	size := p.cache.len()
	if size == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: ErrInsufficientData}
	}

	total := p.tree.total()
	indices := make([]int, batchSize)
	for i := range indices {
		mass := math.Min(p.rng.Float64()*total, math.Nextafter(total, 0))
		index := p.tree.find(mass)

		// Guard against rounding landing on an empty leaf
		if index >= size || p.tree.get(index) <= 0 {
			index = p.rng.Intn(size)
		}
		indices[i] = index
	}

	b := p.cache.gather(indices)

	// Importance sampling weights, normalized by the largest possible
	// weight, which belongs to the minimum priority
	n := float64(size)
	maxWeight := math.Pow(n*p.tree.min()/total, -p.beta)
	for i, index := range indices {
		prob := p.tree.get(index) / total
		b.Weights[i] = math.Pow(n*prob, -p.beta) / maxWeight
	}

	return b, nil
}

// UpdatePriorities sets the priority of each transition at indices[i]
// using tdErrors[i]
func (p *prioritizedBuffer) UpdatePriorities(indices []int,
	tdErrors []float64) error {
	if len(indices) != len(tdErrors) {
		return &ExpReplayError{
			Op: "updatePriorities",
			Err: fmt.Errorf("have %d indices but %d TD errors",
				len(indices), len(tdErrors)),
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	size := p.cache.len()
	for i, index := range indices {
		if index < 0 || index >= size {
			return &ExpReplayError{
				Op:  "updatePriorities",
				Err: errors.Errorf("index %d out of range [0, %d)", index, size),
			}
		}

		priority := p.strategy.Priority(tdErrors[i])
		if math.IsNaN(priority) || math.IsInf(priority, 0) || priority <= 0 {
			return &ExpReplayError{
				Op: "updatePriorities",
				Err: errors.Errorf("invalid priority %v for TD error %v",
					priority, tdErrors[i]),
			}
		}

		p.tree.set(index, priority)
		p.maxPriority = math.Max(p.maxPriority, priority)
	}
	return nil
}

// Len returns the current number of transitions in the buffer
func (p *prioritizedBuffer) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cache.len()
}

// MaxCapacity returns the maximum number of transitions that are
// allowed in the buffer
func (p *prioritizedBuffer) MaxCapacity() int {
	return p.cache.maxCapacity
}

// Warm returns whether the buffer holds at least warmSize transitions
func (p *prioritizedBuffer) Warm(warmSize int) bool {
	return p.Len() >= warmSize
}

// Contents returns copies of all stored transitions, from the oldest
// to the most recently inserted
func (p *prioritizedBuffer) Contents() []timestep.Transition {
	p.mu.Lock()
	defer p.mu.Unlock()

	return contents(p.cache)
}
