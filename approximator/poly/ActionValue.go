package poly

// ActionValue is an action-value function which is linear in the
// polynomial features of the concatenated observation and action
type ActionValue struct {
	weights []float64
	bias    []float64 // Length 1
	degree  int

	obsDims int
	actDims int
}

func newActionValue(obsDims, actDims, degree int) *ActionValue {
	return &ActionValue{
		weights: make([]float64, numFeatures(obsDims+actDims, degree)),
		bias:    make([]float64, 1),
		degree:  degree,
		obsDims: obsDims,
		actDims: actDims,
	}
}

// input concatenates an observation and action
func (q *ActionValue) input(obs, action []float64) []float64 {
	x := make([]float64, 0, q.obsDims+q.actDims)
	x = append(x, obs...)
	return append(x, action...)
}

// value returns Q(s, a) and the features of (s, a)
func (q *ActionValue) value(obs, action []float64) (float64, []float64) {
	psi := features(nil, q.input(obs, action), q.degree)

	v := q.bias[0]
	for i, f := range psi {
		v += q.weights[i] * f
	}
	return v, psi
}

// actionGrad returns ∂Q(s, a) / ∂a
func (q *ActionValue) actionGrad(obs, action []float64) []float64 {
	x := q.input(obs, action)
	grad := make([]float64, q.actDims)
	for j := range grad {
		grad[j] = featureDerivative(q.weights, x, q.obsDims+j, q.degree)
	}
	return grad
}

func (q *ActionValue) clone() *ActionValue {
	c := *q
	c.weights = append([]float64(nil), q.weights...)
	c.bias = append([]float64(nil), q.bias...)
	return &c
}

// polyak sets q = tau*src + (1-tau)*q
func (q *ActionValue) polyak(src *ActionValue, tau float64) {
	for i := range q.weights {
		q.weights[i] = tau*src.weights[i] + (1-tau)*q.weights[i]
	}
	q.bias[0] = tau*src.bias[0] + (1-tau)*q.bias[0]
}
