// Package weights implements weight initializations for linear
// function approximators
package weights

// Initializer initializes a flat slice of weights in place
type Initializer interface {
	Initialize(weights []float64)
}
