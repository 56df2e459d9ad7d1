// Package poly implements a deterministic actor-critic whose actor and
// critic are linear in polynomial features of their inputs. Gradients
// are computed in closed form.
//
// The critic is trained on the one-step TD target
//
//	y = r + γ(1 - done) Q'(s', μ'(s'))
//
// where Q' and μ' are target copies tracking the online parameters by
// Polyak averaging. The actor ascends Q(s, μ(s)) every DelayUpdate
// iterations, at which point the targets are also updated.
package poly

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/gops/approximator"
	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/expreplay"
	"github.com/samuelfneumann/gops/solver"
	"github.com/samuelfneumann/gops/utils/matutils/initializers/weights"
)

// Config implements a configuration of the polynomial actor-critic
type Config struct {
	PolicyDegree       int
	ValueDegree        int
	PolicyLearningRate float64
	ValueLearningRate  float64
	Gamma              float64
	Tau                float64
	DelayUpdate        int

	// Optimizer is the type of solver used for both the actor and the
	// critic
	Optimizer solver.Type

	// InitStd is the standard deviation of the Gaussian used to
	// initialize weights. Zero initializes all weights to zero.
	InitStd float64

	// GradClip clips each element of the mean gradients to
	// [-GradClip, GradClip]. Zero disables clipping.
	GradClip float64
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		PolicyDegree:       4,
		ValueDegree:        2,
		PolicyLearningRate: 1e-3,
		ValueLearningRate:  1e-3,
		Gamma:              0.99,
		Tau:                0.005,
		DelayUpdate:        1,
		Optimizer:          solver.Vanilla,
	}
}

// Validate returns an error describing whether the Config is valid
func (c Config) Validate() error {
	if c.PolicyDegree < 1 || c.ValueDegree < 1 {
		return fmt.Errorf("validate: polynomial degrees must be >= 1")
	}
	if c.PolicyLearningRate <= 0 || c.ValueLearningRate <= 0 {
		return fmt.Errorf("validate: learning rates must be positive")
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: gamma must be in [0, 1]")
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return fmt.Errorf("validate: tau must be in (0, 1]")
	}
	if c.DelayUpdate < 1 {
		return fmt.Errorf("validate: delay update must be >= 1")
	}
	if c.InitStd < 0 || c.GradClip < 0 {
		return fmt.Errorf("validate: init std and gradient clip " +
			"must be non-negative")
	}
	if err := c.solver(c.PolicyLearningRate).Validate(); err != nil {
		return err
	}
	return nil
}

// solver returns the configuration of a solver with the argument step
// size
func (c Config) solver(stepSize float64) solver.Config {
	return solver.NewDefault(c.Optimizer, stepSize, c.GradClip)
}

// ActorCritic implements approximator.Approximator. It is not safe for
// concurrent use, but the policies it returns are.
type ActorCritic struct {
	Config

	actor        *DetermPolicy
	critic       *ActionValue
	targetActor  *DetermPolicy
	targetCritic *ActionValue

	actorSolver  G.Solver
	criticSolver G.Solver

	// Online parameters as stepped by the solvers: weights then bias
	actorParams  []*solver.Param
	criticParams []*solver.Param
}

// New returns a new ActorCritic for an environment with the argument
// observation and action specifications
func New(c Config, obsSpec, actSpec environment.Spec,
	seed uint64) (*ActorCritic, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if actSpec.Cardinality != environment.Continuous {
		return nil, fmt.Errorf("new: actions must be continuous")
	}

	obsDims, actDims := obsSpec.Dims(), actSpec.Dims()

	actor := newDetermPolicy(obsDims, c.PolicyDegree, actSpec.LowerBound,
		actSpec.UpperBound)
	weights.NewGaussian(c.InitStd, seed).Initialize(
		actor.weights.RawMatrix().Data)

	critic := newActionValue(obsDims, actDims, c.ValueDegree)
	weights.NewGaussian(c.InitStd, seed+1).Initialize(critic.weights)

	actorSolver, err := c.solver(c.PolicyLearningRate).Create()
	if err != nil {
		return nil, errors.Wrap(err, "new: actor solver")
	}
	criticSolver, err := c.solver(c.ValueLearningRate).Create()
	if err != nil {
		return nil, errors.Wrap(err, "new: critic solver")
	}

	return &ActorCritic{
		Config:       c,
		actor:        actor,
		critic:       critic,
		targetActor:  actor.clone(),
		targetCritic: critic.clone(),
		actorSolver:  actorSolver,
		criticSolver: criticSolver,
		actorParams: []*solver.Param{
			solver.NewParam(actor.weights.RawMatrix().Data),
			solver.NewParam(actor.bias.RawVector().Data),
		},
		criticParams: []*solver.Param{
			solver.NewParam(critic.weights),
			solver.NewParam(critic.bias),
		},
	}, nil
}

// Policy returns a snapshot of the current actor
func (a *ActorCritic) Policy() approximator.Policy {
	return a.actor.clone()
}

// Update performs one critic update and, every DelayUpdate iterations,
// one actor and target update
func (a *ActorCritic) Update(b *expreplay.Batch,
	iteration int) (approximator.Result, error) {
	start := time.Now()
	n := b.Size()
	if n == 0 {
		return approximator.Result{}, fmt.Errorf("update: empty batch")
	}

	states := make([][]float64, n)
	for i := range states {
		states[i] = mat.Row(nil, i, b.States)
	}

	// Critic
	tdErrors := make([]float64, n)
	zeroGrad(a.criticParams)
	weightGrad := a.criticParams[0].Gradient()
	biasGrad := a.criticParams[1].Gradient()
	var criticLoss, averageValue float64
	for i := 0; i < n; i++ {
		nextState := mat.Row(nil, i, b.NextStates)
		nextAction, _ := a.targetActor.forward(nextState)
		nextValue, _ := a.targetCritic.value(nextState,
			nextAction.RawVector().Data)

		notDone := 1.0
		if b.Dones[i] {
			notDone = 0.0
		}
		target := b.Rewards[i] + a.Gamma*notDone*nextValue

		value, psi := a.critic.value(states[i], mat.Row(nil, i, b.Actions))
		delta := target - value
		tdErrors[i] = delta

		// Gradient of w·δ²/2, with the target held fixed
		weighted := b.Weights[i] * delta
		floats.AddScaled(weightGrad, -weighted/float64(n), psi)
		biasGrad[0] -= weighted / float64(n)

		criticLoss += b.Weights[i] * delta * delta
		averageValue += value
	}
	criticLoss /= float64(n)
	averageValue /= float64(n)

	if err := step(a.criticSolver, a.criticParams); err != nil {
		return approximator.Result{}, errors.Wrap(err, "update: critic")
	}

	// Actor
	actorLoss, err := a.actorStep(states, iteration%a.DelayUpdate == 0)
	if err != nil {
		return approximator.Result{}, errors.Wrap(err, "update: actor")
	}
	if iteration%a.DelayUpdate == 0 {
		a.targetActor.polyak(a.actor, a.Tau)
		a.targetCritic.polyak(a.critic, a.Tau)
	}

	if err := a.checkFinite(iteration, criticLoss, actorLoss); err != nil {
		return approximator.Result{}, err
	}

	return approximator.Result{
		Metrics: map[string]float64{
			approximator.LossCritic:         criticLoss,
			approximator.LossActor:          actorLoss,
			approximator.CriticAverageValue: averageValue,
			approximator.AlgTime: float64(time.Since(start).Microseconds()) /
				1000,
		},
		TDErrors: tdErrors,
	}, nil
}

// actorStep computes the actor loss -mean Q(s, μ(s)) and, if update is
// true, takes one solver step on it
func (a *ActorCritic) actorStep(states [][]float64,
	update bool) (float64, error) {
	n := float64(len(states))
	rows, cols := a.actor.weights.Dims()
	zeroGrad(a.actorParams)
	weightGrad := a.actorParams[0].Gradient()
	biasGrad := a.actorParams[1].Gradient()

	var loss float64
	for _, state := range states {
		action, squashed := a.actor.forward(state)
		value, _ := a.critic.value(state, action.RawVector().Data)
		loss -= value

		if !update {
			continue
		}
		phi := features(nil, state, a.actor.degree)
		dQda := a.critic.actionGrad(state, action.RawVector().Data)
		for j := 0; j < rows; j++ {
			dz := dQda[j] * a.actor.half[j] * (1 - squashed[j]*squashed[j])
			floats.AddScaled(weightGrad[j*cols:(j+1)*cols], -dz/n, phi)
			biasGrad[j] -= dz / n
		}
	}

	if update {
		if err := step(a.actorSolver, a.actorParams); err != nil {
			return 0, err
		}
	}

	return loss / n, nil
}

// step takes one solver step on params, whose gradients must be set
func step(s G.Solver, params []*solver.Param) error {
	model := make([]G.ValueGrad, len(params))
	for i, p := range params {
		model[i] = p
	}
	return s.Step(model)
}

func zeroGrad(params []*solver.Param) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// checkFinite returns an error wrapping approximator.ErrDiverged if
// any loss or parameter is NaN or Inf
func (a *ActorCritic) checkFinite(iteration int, losses ...float64) error {
	for _, l := range losses {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return approximator.Diverged("loss", iteration)
		}
	}

	params := map[string][]float64{
		"actor weights":  a.actor.weights.RawMatrix().Data,
		"actor bias":     a.actor.bias.RawVector().Data,
		"critic weights": a.critic.weights,
		"critic bias":    a.critic.bias,
	}
	for name, p := range params {
		if floats.HasNaN(p) || math.IsInf(floats.Sum(p), 0) {
			return approximator.Diverged(name, iteration)
		}
	}
	return nil
}

// stateDict is the serialized form of an ActorCritic
type stateDict struct {
	ObsDims, ActDims          int
	PolicyDegree, ValueDegree int

	Actor, ActorBias             []float64
	Critic                       []float64
	CriticBias                   float64
	TargetActor, TargetActorBias []float64
	TargetCritic                 []float64
	TargetCriticBias             float64
}

// StateDict serializes the online and target parameters using gob
func (a *ActorCritic) StateDict() ([]byte, error) {
	s := stateDict{
		ObsDims:          a.actor.obsDims,
		ActDims:          a.critic.actDims,
		PolicyDegree:     a.actor.degree,
		ValueDegree:      a.critic.degree,
		Actor:            a.actor.weights.RawMatrix().Data,
		ActorBias:        a.actor.bias.RawVector().Data,
		Critic:           a.critic.weights,
		CriticBias:       a.critic.bias[0],
		TargetActor:      a.targetActor.weights.RawMatrix().Data,
		TargetActorBias:  a.targetActor.bias.RawVector().Data,
		TargetCritic:     a.targetCritic.weights,
		TargetCriticBias: a.targetCritic.bias[0],
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, errors.Wrap(err, "stateDict")
	}
	return buf.Bytes(), nil
}

// LoadStateDict restores parameters serialized by StateDict. The
// serialized parameters must have the same shapes as this ActorCritic.
func (a *ActorCritic) LoadStateDict(data []byte) error {
	var s stateDict
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return errors.Wrap(err, "loadStateDict")
	}

	if s.ObsDims != a.actor.obsDims || s.ActDims != a.critic.actDims ||
		s.PolicyDegree != a.actor.degree || s.ValueDegree != a.critic.degree {
		return fmt.Errorf("loadStateDict: shape mismatch \n\twant(obs=%v, "+
			"act=%v, degrees=%v/%v) \n\thave(obs=%v, act=%v, degrees=%v/%v)",
			a.actor.obsDims, a.critic.actDims, a.actor.degree,
			a.critic.degree, s.ObsDims, s.ActDims, s.PolicyDegree,
			s.ValueDegree)
	}

	copy(a.actor.weights.RawMatrix().Data, s.Actor)
	copy(a.actor.bias.RawVector().Data, s.ActorBias)
	copy(a.critic.weights, s.Critic)
	a.critic.bias[0] = s.CriticBias
	copy(a.targetActor.weights.RawMatrix().Data, s.TargetActor)
	copy(a.targetActor.bias.RawVector().Data, s.TargetActorBias)
	copy(a.targetCritic.weights, s.TargetCritic)
	a.targetCritic.bias[0] = s.TargetCriticBias
	return nil
}
