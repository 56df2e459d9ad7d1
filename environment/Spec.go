package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, discount, or reward in
// an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// Dims returns the dimensionality of the data the Spec describes
func (s Spec) Dims() int {
	return s.Shape.Len()
}

// Clip clips each element of v in place to lie within the bounds of
// the Spec
func (s Spec) Clip(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		bounds := r1.Interval{Min: s.LowerBound.AtVec(i),
			Max: s.UpperBound.AtVec(i)}
		v.SetVec(i, Clamp(v.AtVec(i), bounds))
	}
}

// Clamp limits value to the closed interval bounds
func Clamp(value float64, bounds r1.Interval) float64 {
	return math.Max(bounds.Min, math.Min(value, bounds.Max))
}

// Contains returns whether v lies within the bounds of the Spec
func (s Spec) Contains(v mat.Vector) bool {
	if v.Len() != s.Dims() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < s.LowerBound.AtVec(i) ||
			v.AtVec(i) > s.UpperBound.AtVec(i) {
			return false
		}
	}
	return true
}
