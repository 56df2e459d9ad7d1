package expreplay

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gops/timestep"
)

// cache implements the ring storage shared by the buffers of this
// package. Transitions are stored in flat caches, one row of
// featureSize or actionSize values per slot. The cache is not safe for
// concurrent use; buffers guard it with their own lock.
type cache struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	discountCache  []float64
	nextStateCache []float64
	doneCache      []bool

	// next is the slot the next transition is written to
	next   int
	isFull bool

	maxCapacity int
	featureSize int
	actionSize  int
}

// newCache returns a new cache which can hold maxCapacity transitions
func newCache(maxCapacity, featureSize, actionSize int) (*cache, error) {
	if maxCapacity < 1 {
		return nil, fmt.Errorf("new: maxCapacity must be >= 1")
	}
	if featureSize < 1 || actionSize < 1 {
		return nil, fmt.Errorf("new: feature size (%v) and action size "+
			"(%v) must be >= 1", featureSize, actionSize)
	}

	return &cache{
		stateCache:     make([]float64, maxCapacity*featureSize),
		actionCache:    make([]float64, maxCapacity*actionSize),
		rewardCache:    make([]float64, maxCapacity),
		discountCache:  make([]float64, maxCapacity),
		nextStateCache: make([]float64, maxCapacity*featureSize),
		doneCache:      make([]bool, maxCapacity),

		maxCapacity: maxCapacity,
		featureSize: featureSize,
		actionSize:  actionSize,
	}, nil
}

// len returns the number of transitions stored
func (c *cache) len() int {
	if c.isFull {
		return c.maxCapacity
	}
	return c.next
}

// validate checks that a transition fits the cache
func (c *cache) validate(t timestep.Transition) error {
	if t.State == nil || t.NextState == nil || t.Action == nil {
		return &ExpReplayError{
			Op:  "add",
			Err: errors.Wrap(ErrInvalidTransition, "nil vector"),
		}
	}
	if t.State.Len() != c.featureSize || t.NextState.Len() != c.featureSize {
		return &ExpReplayError{
			Op: "add",
			Err: errors.Wrapf(ErrInvalidTransition, "invalid feature size "+
				"\n\twant(%v)\n\thave(%v, %v)", c.featureSize, t.State.Len(),
				t.NextState.Len()),
		}
	}
	if t.Action.Len() != c.actionSize {
		return &ExpReplayError{
			Op: "add",
			Err: errors.Wrapf(ErrInvalidTransition, "invalid action size "+
				"\n\twant(%v)\n\thave(%v)", c.actionSize, t.Action.Len()),
		}
	}
	return nil
}

// write writes the transition into the next slot of the ring, copying
// its vectors, and returns the slot written to. The transition must
// have been validated.
func (c *cache) write(t timestep.Transition) int {
	index := c.next

	stateInd := index * c.featureSize
	copyVec(c.stateCache[stateInd:stateInd+c.featureSize], t.State)
	copyVec(c.nextStateCache[stateInd:stateInd+c.featureSize], t.NextState)

	actionInd := index * c.actionSize
	copyVec(c.actionCache[actionInd:actionInd+c.actionSize], t.Action)

	c.rewardCache[index] = t.Reward
	c.discountCache[index] = t.Discount
	c.doneCache[index] = t.Done

	c.next = (c.next + 1) % c.maxCapacity
	if c.next == 0 {
		c.isFull = true
	}
	return index
}

// gather copies the transitions at the argument slots into a new Batch
func (c *cache) gather(indices []int) *Batch {
	b := newBatch(len(indices), c.featureSize, c.actionSize)

	for i, index := range indices {
		stateInd := index * c.featureSize
		b.States.SetRow(i, c.stateCache[stateInd:stateInd+c.featureSize])
		b.NextStates.SetRow(i,
			c.nextStateCache[stateInd:stateInd+c.featureSize])

		actionInd := index * c.actionSize
		b.Actions.SetRow(i, c.actionCache[actionInd:actionInd+c.actionSize])

		b.Rewards[i] = c.rewardCache[index]
		b.Discounts[i] = c.discountCache[index]
		b.Dones[i] = c.doneCache[index]
		b.Indices[i] = index
	}

	return b
}

// ordered returns the slots holding data, from the oldest to the most
// recently inserted
func (c *cache) ordered() []int {
	size := c.len()
	start := 0
	if c.isFull {
		start = c.next
	}

	indices := make([]int, size)
	for i := range indices {
		indices[i] = (start + i) % c.maxCapacity
	}
	return indices
}

// String returns the string representation of the cache
func (c *cache) String() string {
	baseStr := "Size: %v/%v \nNext Slot: %v \nStates: %v \nActions: %v " +
		"\nRewards: %v \nDiscounts: %v \nNext States: %v \nDones: %v"
	return fmt.Sprintf(baseStr, c.len(), c.maxCapacity, c.next,
		c.stateCache, c.actionCache, c.rewardCache, c.discountCache,
		c.nextStateCache, c.doneCache)
}

func copyVec(dst []float64, v *mat.VecDense) {
	for i := range dst {
		dst[i] = v.AtVec(i)
	}
}
