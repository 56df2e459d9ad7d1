package poly

import "math"

// numFeatures returns the number of polynomial features of an input of
// n dimensions
func numFeatures(n, degree int) int {
	return n * degree
}

// features computes the polynomial features x_p^k, k = 0, ..., d-1,
// of x into dst. Feature k*len(x) + p holds x_p^k.
func features(dst, x []float64, degree int) []float64 {
	n := len(x)
	if dst == nil {
		dst = make([]float64, numFeatures(n, degree))
	}

	for p, v := range x {
		dst[p] = 1
		for k := 1; k < degree; k++ {
			dst[k*n+p] = dst[(k-1)*n+p] * v
		}
	}
	return dst
}

// featureDerivative returns ∂(w · φ(x)) / ∂x_p for the polynomial
// features φ of degree d
func featureDerivative(w, x []float64, p, degree int) float64 {
	n := len(x)
	grad := 0.0
	for k := 1; k < degree; k++ {
		grad += w[k*n+p] * float64(k) * math.Pow(x[p], float64(k-1))
	}
	return grad
}
