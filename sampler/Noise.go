package sampler

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NoiseType is the type of exploration noise added to actions
type NoiseType string

const (
	NoNoise          NoiseType = "none"
	GaussianNoise    NoiseType = "normal"
	DecayingGaussian NoiseType = "decaying_normal"
)

// NoiseConfig implements a configuration of exploration Noise
type NoiseConfig struct {
	Type NoiseType
	Std  float64

	// Decaying noise only. The standard deviation after t perturbations
	// is max(MinStd, Std * Decay^t).
	Decay  float64
	MinStd float64
}

// Create returns the Noise described by the NoiseConfig
func (n NoiseConfig) Create(seed uint64) (Noise, error) {
	switch n.Type {
	case NoNoise, "":
		return None{}, nil

	case GaussianNoise:
		if n.Std < 0 {
			return nil, fmt.Errorf("create: std must be non-negative")
		}
		return NewGaussian(n.Std, seed), nil

	case DecayingGaussian:
		if n.Std < 0 || n.MinStd < 0 || n.Decay <= 0 || n.Decay > 1 {
			return nil, fmt.Errorf("create: invalid decaying noise %+v", n)
		}
		return NewDecaying(n.Std, n.Decay, n.MinStd, seed), nil
	}

	return nil, fmt.Errorf("create: no such noise type %q", n.Type)
}

// Noise perturbs actions for exploration. Noise is stateful and not
// safe for concurrent use; each sampler owns its own Noise.
type Noise interface {
	Perturb(action *mat.VecDense)
}

// None adds no noise
type None struct{}

// Perturb leaves the action unchanged
func (None) Perturb(*mat.VecDense) {}

// Gaussian adds independent zero-mean Gaussian noise of a fixed
// standard deviation to each action dimension
type Gaussian struct {
	dist distuv.Normal
}

// NewGaussian returns a new Gaussian noise
func NewGaussian(std float64, seed uint64) *Gaussian {
	return &Gaussian{
		dist: distuv.Normal{Mu: 0, Sigma: std, Src: rand.NewSource(seed)},
	}
}

// Perturb adds noise to action in place
func (g *Gaussian) Perturb(action *mat.VecDense) {
	if g.dist.Sigma == 0 {
		return
	}
	for i := 0; i < action.Len(); i++ {
		action.SetVec(i, action.AtVec(i)+g.dist.Rand())
	}
}

// Decaying is Gaussian noise whose standard deviation decays
// geometrically with each perturbation down to a minimum
type Decaying struct {
	*Gaussian
	decay  float64
	minStd float64
}

// NewDecaying returns a new Decaying noise
func NewDecaying(std, decay, minStd float64, seed uint64) *Decaying {
	return &Decaying{
		Gaussian: NewGaussian(std, seed),
		decay:    decay,
		minStd:   minStd,
	}
}

// Perturb adds noise to action in place, then decays the noise
func (d *Decaying) Perturb(action *mat.VecDense) {
	d.Gaussian.Perturb(action)
	d.dist.Sigma = math.Max(d.minStd, d.dist.Sigma*d.decay)
}

// Std returns the current standard deviation
func (d *Decaying) Std() float64 {
	return d.dist.Sigma
}
