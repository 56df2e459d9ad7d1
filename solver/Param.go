package solver

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Param is a flat parameter vector together with its gradient. It
// implements G.ValueGrad: a Gorgonia Solver stepping a Param updates the
// parameter vector in place and zeroes the gradient.
type Param struct {
	value *tensor.Dense
	grad  *tensor.Dense
}

// NewParam returns a Param over values. The returned Param shares the
// backing data of values.
func NewParam(values []float64) *Param {
	n := len(values)
	return &Param{
		value: tensor.New(tensor.WithShape(n), tensor.WithBacking(values)),
		grad: tensor.New(tensor.WithShape(n),
			tensor.WithBacking(make([]float64, n))),
	}
}

// Value implements the G.Valuer interface
func (p *Param) Value() G.Value {
	return p.value
}

// Grad implements the G.ValueGrad interface
func (p *Param) Grad() (G.Value, error) {
	return p.grad, nil
}

// Gradient returns the gradient vector, which callers fill before
// stepping a Solver
func (p *Param) Gradient() []float64 {
	return p.grad.Data().([]float64)
}

// ZeroGrad sets the gradient to zero
func (p *Param) ZeroGrad() {
	p.grad.Zero()
}
