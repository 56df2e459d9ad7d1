package poly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DetermPolicy is a deterministic policy which is linear in the
// polynomial features of the observation. Actions are squashed by tanh
// into the action bounds:
//
//	a = (high + low)/2 + (high - low)/2 * tanh(W φ(s) + c)
type DetermPolicy struct {
	weights *mat.Dense    // (action dims x features)
	bias    *mat.VecDense // (action dims)
	degree  int

	obsDims int
	mid     []float64
	half    []float64
}

func newDetermPolicy(obsDims, degree int, low, high mat.Vector) *DetermPolicy {
	actDims := low.Len()
	mid := make([]float64, actDims)
	half := make([]float64, actDims)
	for i := range mid {
		mid[i] = (high.AtVec(i) + low.AtVec(i)) / 2
		half[i] = (high.AtVec(i) - low.AtVec(i)) / 2
	}

	return &DetermPolicy{
		weights: mat.NewDense(actDims, numFeatures(obsDims, degree), nil),
		bias:    mat.NewVecDense(actDims, nil),
		degree:  degree,
		obsDims: obsDims,
		mid:     mid,
		half:    half,
	}
}

// Act returns the action of the policy in obs
func (d *DetermPolicy) Act(obs mat.Vector) (*mat.VecDense, error) {
	if obs.Len() != d.obsDims {
		return nil, fmt.Errorf("act: invalid observation size \n\twant(%v)"+
			"\n\thave(%v)", d.obsDims, obs.Len())
	}

	x := make([]float64, obs.Len())
	for i := range x {
		x[i] = obs.AtVec(i)
	}
	action, _ := d.forward(x)
	return action, nil
}

// forward returns the action in state x along with tanh of the
// pre-activation, needed for gradients
func (d *DetermPolicy) forward(x []float64) (*mat.VecDense, []float64) {
	phi := mat.NewVecDense(numFeatures(len(x), d.degree),
		features(nil, x, d.degree))

	z := mat.NewVecDense(d.bias.Len(), nil)
	z.MulVec(d.weights, phi)
	z.AddVec(z, d.bias)

	squashed := make([]float64, z.Len())
	action := mat.NewVecDense(z.Len(), nil)
	for i := range squashed {
		squashed[i] = math.Tanh(z.AtVec(i))
		action.SetVec(i, d.mid[i]+d.half[i]*squashed[i])
	}
	return action, squashed
}

// clone returns a deep copy of the policy
func (d *DetermPolicy) clone() *DetermPolicy {
	return &DetermPolicy{
		weights: mat.DenseCopyOf(d.weights),
		bias:    mat.VecDenseCopyOf(d.bias),
		degree:  d.degree,
		obsDims: d.obsDims,
		mid:     append([]float64(nil), d.mid...),
		half:    append([]float64(nil), d.half...),
	}
}

// polyak sets d = tau*src + (1-tau)*d
func (d *DetermPolicy) polyak(src *DetermPolicy, tau float64) {
	var scaled mat.Dense
	scaled.Scale(tau, src.weights)
	d.weights.Scale(1-tau, d.weights)
	d.weights.Add(d.weights, &scaled)

	d.bias.ScaleVec(1-tau, d.bias)
	d.bias.AddScaledVec(d.bias, tau, src.bias)
}
