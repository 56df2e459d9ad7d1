package weights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroStdInitializesToZero(t *testing.T) {
	w := []float64{1, 2, 3}
	NewGaussian(0, 1).Initialize(w)
	assert.Equal(t, []float64{0, 0, 0}, w)
}

func TestGaussianIsSeeded(t *testing.T) {
	a, b := make([]float64, 8), make([]float64, 8)
	NewGaussian(0.1, 3).Initialize(a)
	NewGaussian(0.1, 3).Initialize(b)
	assert.Equal(t, a, b)
	assert.NotEqual(t, make([]float64, 8), a)
}
