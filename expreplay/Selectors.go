package expreplay

import (
	"golang.org/x/exp/rand"
)

// Selector implements functionality for choosing the buffer slots that
// transitions should be sampled from
type Selector interface {
	// choose selects n slots out of the size slots that hold data
	choose(n, size int) []int
}

// uniformSelector is a Selector which selects slots uniformly
// randomly, independently, and with replacement
type uniformSelector struct {
	rng *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly from an experience replay buffer
func NewUniformSelector(seed uint64) Selector {
	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &uniformSelector{rng: rng}
}

// choose selects n slots in [0, size) at which to draw data from the
// buffer
func (u *uniformSelector) choose(n, size int) []int {
	selected := make([]int, n)

	for i := range selected {
		selected[i] = u.rng.Intn(size)
	}

	return selected
}
