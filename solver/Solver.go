// Package solver configures Gorgonia Solvers and adapts flat parameter
// vectors so that Gorgonia Solvers can step them in place.
package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
	RMSProp Type = "RMSProp"
)

// Config describes a Gorgonia Solver and can be used to create the
// Solver it describes
type Config struct {
	Type
	StepSize float64
	Clip     float64 // <= 0 if no clipping

	Epsilon float64 // Smoothing factor, Adam and RMSProp only
	Beta1   float64 // Adam only
	Beta2   float64 // Adam only
	Rho     float64 // RMSProp only
}

// NewDefault returns the configuration of a Solver of type t with
// default hyperparameters
func NewDefault(t Type, stepSize, clip float64) Config {
	switch t {
	case Adam:
		return NewAdam(stepSize, 1e-8, 0.9, 0.999, clip)

	case RMSProp:
		return NewRMSProp(stepSize, 1e-8, 0.9, clip)
	}
	return Config{Type: t, StepSize: stepSize, Clip: clip}
}

// Validate returns an error describing whether the Config is valid
func (c Config) Validate() error {
	if c.StepSize <= 0 {
		return fmt.Errorf("validate: step size must be positive")
	}

	switch c.Type {
	case Vanilla:
		return nil

	case Adam:
		if c.Beta1 < 0 || c.Beta1 >= 1 || c.Beta2 < 0 || c.Beta2 >= 1 {
			return fmt.Errorf("validate: betas must be in [0, 1)")
		}

	case RMSProp:
		if c.Rho < 0 || c.Rho >= 1 {
			return fmt.Errorf("validate: rho must be in [0, 1)")
		}

	default:
		return fmt.Errorf("validate: no such solver type %q", c.Type)
	}

	if c.Epsilon <= 0 {
		return fmt.Errorf("validate: epsilon must be positive")
	}
	return nil
}

// Create returns a new Gorgonia Solver as described by the Config
func (c Config) Create() (G.Solver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	opts := []G.SolverOpt{G.WithLearnRate(c.StepSize)}
	if c.Clip > 0 {
		opts = append(opts, G.WithClip(c.Clip))
	}

	switch c.Type {
	case Adam:
		opts = append(opts, G.WithEps(c.Epsilon), G.WithBeta1(c.Beta1),
			G.WithBeta2(c.Beta2))
		return G.NewAdamSolver(opts...), nil

	case RMSProp:
		opts = append(opts, G.WithEps(c.Epsilon), G.WithRho(c.Rho))
		return G.NewRMSPropSolver(opts...), nil
	}
	return G.NewVanillaSolver(opts...), nil
}

// NewVanilla returns the configuration of a vanilla gradient descent
// Solver
func NewVanilla(stepSize, clip float64) Config {
	return Config{Type: Vanilla, StepSize: stepSize, Clip: clip}
}

// NewAdam returns the configuration of an Adam Solver
func NewAdam(stepSize, epsilon, beta1, beta2, clip float64) Config {
	return Config{
		Type:     Adam,
		StepSize: stepSize,
		Epsilon:  epsilon,
		Beta1:    beta1,
		Beta2:    beta2,
		Clip:     clip,
	}
}

// NewRMSProp returns the configuration of an RMSProp Solver
func NewRMSProp(stepSize, epsilon, rho, clip float64) Config {
	return Config{
		Type:     RMSProp,
		StepSize: stepSize,
		Epsilon:  epsilon,
		Rho:      rho,
		Clip:     clip,
	}
}
