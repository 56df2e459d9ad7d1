package weights

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// LinearUV initializes weights with independent draws from a
// univariate distribution
type LinearUV struct {
	distuv.Rander
}

// NewLinearUV creates and returns a new LinearUV
func NewLinearUV(rand distuv.Rander) LinearUV {
	if rand == nil {
		panic("rand cannot be nil")
	}
	return LinearUV{rand}
}

// Initialize fills weights with draws from the distribution
func (l LinearUV) Initialize(weights []float64) {
	for i := range weights {
		weights[i] = l.Rand()
	}
}

// NewGaussian returns an Initializer drawing weights from N(0, std²).
// A zero std results in zero initialization.
func NewGaussian(std float64, seed uint64) Initializer {
	if std == 0 {
		return NewLinearUV(NewZeroUV())
	}
	return NewLinearUV(distuv.Normal{
		Mu:    0,
		Sigma: std,
		Src:   rand.NewSource(seed),
	})
}
