// Package pendulum implements the continuous-action pendulum swing-up
// classic control environment
package pendulum

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gops/environment"
	"github.com/samuelfneumann/gops/timestep"
)

// default physical constants
const (
	AngleBound  float64 = math.Pi // +/- Angle bounds
	SpeedBound  float64 = 8.0     // +/- Speed bounds
	TorqueBound float64 = 2.0     // +/- Torque bounds

	MaxContinuousAction float64 = TorqueBound
	MinContinuousAction float64 = -MaxContinuousAction

	Dt              float64 = 0.05
	Gravity         float64 = 9.8
	Mass            float64 = 1.0
	Length          float64 = 1.0
	ActionDims      int     = 1
	ObservationDims int     = 2
)

// Pendulum implements the classic control environment Pendulum. In this
// environment, a pendulum is attached to a fixed base. An agent can
// swing the pendulum back and forth, but the swinging torque is
// underpowered. In order to swing the pendulum straight up, it must
// first be rocked back and forth, using the momentum to gradually
// climb higher.
//
// State features consist of the angle of the pendulum from the positive
// y-axis and the angular velocity of the pendulum. The angular
// velocity is clipped to [-SpeedBound, SpeedBound]. Angles are
// normalized to stay within [-π, π].
//
// Actions are continuous and 1-dimensional torques in [-2, 2]. Actions
// outside of this region are clipped.
type Pendulum struct {
	environment.Task
	angleBounds  r1.Interval
	speedBounds  r1.Interval
	torqueBounds r1.Interval
	lastStep     timestep.TimeStep
	discount     float64
}

// New creates and returns a new Pendulum environment
func New(t environment.Task, discount float64) (*Pendulum, timestep.TimeStep,
	error) {
	p := &Pendulum{
		Task:         t,
		angleBounds:  r1.Interval{Min: -AngleBound, Max: AngleBound},
		speedBounds:  r1.Interval{Min: -SpeedBound, Max: SpeedBound},
		torqueBounds: r1.Interval{Min: -TorqueBound, Max: TorqueBound},
		discount:     discount,
	}

	step, err := p.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, err
	}
	return p, step, nil
}

// LastTimeStep returns the last TimeStep that occurred in the
// environment
func (p *Pendulum) LastTimeStep() timestep.TimeStep {
	return p.lastStep
}

// Seed re-seeds the starting state distribution if it supports seeding
func (p *Pendulum) Seed(seed uint64) {
	if s, ok := p.Task.(environment.Seeder); ok {
		s.Seed(seed)
	}
}

// Reset resets the environment and returns a starting state drawn from the
// Starter
func (p *Pendulum) Reset() (timestep.TimeStep, error) {
	state := p.Start()
	if !p.ObservationSpec().Contains(state) {
		return timestep.TimeStep{}, fmt.Errorf("reset: starting state %v "+
			"not within observation bounds", state.RawVector().Data)
	}
	startStep := timestep.New(timestep.First, 0, p.discount, state, 0)
	p.lastStep = startStep

	return startStep, nil
}

// Step takes one environmental step given action a and returns the
// next timestep and whether or not the episode has ended.
func (p *Pendulum) Step(a mat.Vector) (timestep.TimeStep, bool, error) {
	if a.Len() != ActionDims {
		return timestep.TimeStep{}, false, errors.Wrapf(
			environment.ErrIllegalAction,
			"step: expected %d action dimensions, got %d", ActionDims,
			a.Len())
	}
	torque := a.AtVec(0)
	if math.IsNaN(torque) || math.IsInf(torque, 0) {
		return timestep.TimeStep{}, false, errors.Wrapf(
			environment.ErrIllegalAction, "step: action %v", torque)
	}
	torque = environment.Clamp(torque, p.torqueBounds)

	obs := p.lastStep.Observation
	th, thdot := obs.AtVec(0), obs.AtVec(1)

	newthdot := thdot + (-3*Gravity/(2*Length)*math.Sin(th+math.Pi)+
		3.0/(Mass*Length*Length)*torque)*Dt
	newthdot = environment.Clamp(newthdot, p.speedBounds)
	newth := normalizeAngle(th + newthdot*Dt)

	newState := mat.NewVecDense(ObservationDims, []float64{newth, newthdot})
	action := mat.NewVecDense(ActionDims, []float64{torque})
	reward := p.GetReward(obs, action, newState)
	nextStep := timestep.New(timestep.Mid, reward, p.discount, newState,
		p.lastStep.Number+1)

	p.End(&nextStep)

	p.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// ActionSpec returns the action specification of the environment
func (p *Pendulum) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims, []float64{MinContinuousAction})
	upperBound := mat.NewVecDense(ActionDims, []float64{MaxContinuousAction})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (p *Pendulum) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{p.discount})
	upperBound := mat.NewVecDense(1, []float64{p.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

// ObservationSpec returns the observation specification of the environment
func (p *Pendulum) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	minObs := []float64{p.angleBounds.Min, p.speedBounds.Min}
	lowerBound := mat.NewVecDense(ObservationDims, minObs)

	maxObs := []float64{p.angleBounds.Max, p.speedBounds.Max}
	upperBound := mat.NewVecDense(ObservationDims, maxObs)

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Continuous)
}

// String converts the environment to a string representation
func (p *Pendulum) String() string {
	str := "Pendulum  |  theta: %v  |  theta dot: %v"
	theta := p.lastStep.Observation.AtVec(0)
	thetadot := p.lastStep.Observation.AtVec(1)

	return fmt.Sprintf(str, theta, thetadot)
}

// normalizeAngle wraps an angle into [-π, π]
func normalizeAngle(th float64) float64 {
	th = math.Mod(th+math.Pi, 2*math.Pi)
	if th < 0 {
		th += 2 * math.Pi
	}
	return th - math.Pi
}
