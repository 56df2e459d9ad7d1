package expreplay

import "math"

// PriorityStrategy converts the TD error of a transition into its
// sampling priority. Prioritized buffers sample transitions with
// probability proportional to their priority.
type PriorityStrategy interface {
	Priority(tdError float64) float64
}

// Proportional implements proportional prioritization:
//
//	p = (|δ| + ε)^α
//
// With α = 0 sampling is uniform.
type Proportional struct {
	Alpha   float64
	Epsilon float64
}

// Priority implements the PriorityStrategy interface
func (p Proportional) Priority(tdError float64) float64 {
	return math.Pow(math.Abs(tdError)+p.Epsilon, p.Alpha)
}
