package expreplay

import "math"

// sumTree is a binary segment tree over leaf priorities which supports
// O(log n) updates, prefix-sum search, and minimum queries. Leaves are
// stored at [capacity, 2*capacity) where capacity is a power of two.
type sumTree struct {
	capacity int
	sums     []float64
	mins     []float64
}

// newSumTree returns a sumTree with at least size leaves, all zero
func newSumTree(size int) *sumTree {
	capacity := 1
	for capacity < size {
		capacity *= 2
	}

	mins := make([]float64, 2*capacity)
	for i := range mins {
		mins[i] = math.Inf(1)
	}

	return &sumTree{
		capacity: capacity,
		sums:     make([]float64, 2*capacity),
		mins:     mins,
	}
}

// set sets the priority of leaf i
func (s *sumTree) set(i int, priority float64) {
	node := i + s.capacity
	s.sums[node] = priority
	s.mins[node] = priority

	for node /= 2; node >= 1; node /= 2 {
		s.sums[node] = s.sums[2*node] + s.sums[2*node+1]
		s.mins[node] = math.Min(s.mins[2*node], s.mins[2*node+1])
	}
}

// get returns the priority of leaf i
func (s *sumTree) get(i int) float64 {
	return s.sums[i+s.capacity]
}

// total returns the sum of all priorities
func (s *sumTree) total() float64 {
	return s.sums[1]
}

// min returns the minimum priority over all leaves that have been set
func (s *sumTree) min() float64 {
	return s.mins[1]
}

// find returns the smallest leaf index i such that the sum of the
// priorities of leaves [0, i] exceeds mass
func (s *sumTree) find(mass float64) int {
	node := 1
	for node < s.capacity {
		left := 2 * node
		if mass < s.sums[left] {
			node = left
		} else {
			mass -= s.sums[left]
			node = left + 1
		}
	}
	return node - s.capacity
}
