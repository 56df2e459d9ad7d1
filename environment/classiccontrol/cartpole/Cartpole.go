// Package cartpole implements the continuous-action Cartpole classic
// control environment
package cartpole

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gops/environment"
	ts "github.com/samuelfneumann/gops/timestep"
)

const (
	// Physical constants
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	HalfPoleLength float64 = 0.5  // half of pole length
	ForceScale     float64 = 30.0 // Newtons per unit of action
	Dt             float64 = 0.02 // seconds between state updates

	// Episode termination thresholds
	PositionThreshold float64 = 2.4
	AngleThreshold    float64 = 12 * 2 * math.Pi / 360

	// Continuous action bounds, a force of ±10N after scaling
	MaxContinuousAction float64 = 10.0 / ForceScale
	MinContinuousAction float64 = -MaxContinuousAction

	ObservationDims int = 4
	ActionDims      int = 1
)

// Cartpole implements the classic control environment Cartpole with
// continuous actions. In this environment, a pole is attached to a
// cart, which can move horizontally. The agent must keep the pole
// upright for as long as possible.
//
// The state features are continuous and consist of the cart's x
// position and speed, as well as the pole's angle from the positive
// y-axis and the pole's angular velocity.
//
// Actions are 1-dimensional and continuous in
// [MinContinuousAction, MaxContinuousAction]. The force applied to the
// cart is the action multiplied by ForceScale.
type Cartpole struct {
	env.Task
	lastStep ts.TimeStep
	discount float64

	positionBounds        r1.Interval
	speedBounds           r1.Interval
	angleBounds           r1.Interval
	angularVelocityBounds r1.Interval
}

// New constructs a new Cartpole environment
func New(t env.Task, discount float64) (*Cartpole, ts.TimeStep, error) {
	c := &Cartpole{
		Task:     t,
		discount: discount,

		positionBounds: r1.Interval{
			Min: -2 * PositionThreshold,
			Max: 2 * PositionThreshold,
		},
		speedBounds: r1.Interval{Min: -math.MaxFloat64, Max: math.MaxFloat64},
		angleBounds: r1.Interval{
			Min: -2 * AngleThreshold,
			Max: 2 * AngleThreshold,
		},
		angularVelocityBounds: r1.Interval{
			Min: -math.MaxFloat64,
			Max: math.MaxFloat64,
		},
	}

	step, err := c.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, err
	}
	return c, step, nil
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (c *Cartpole) Reset() (ts.TimeStep, error) {
	state := c.Start()
	if !c.ObservationSpec().Contains(state) {
		return ts.TimeStep{}, fmt.Errorf("reset: starting state %v not "+
			"within observation bounds", state.RawVector().Data)
	}

	startStep := ts.New(ts.First, 0, c.discount, state, 0)
	c.lastStep = startStep

	return startStep, nil
}

// Seed re-seeds the starting state distribution if it supports seeding
func (c *Cartpole) Seed(seed uint64) {
	if s, ok := c.Task.(env.Seeder); ok {
		s.Seed(seed)
	}
}

// LastTimeStep returns the last TimeStep that occurred in the
// environment
func (c *Cartpole) LastTimeStep() ts.TimeStep {
	return c.lastStep
}

// ActionSpec returns the action specification of the environment
func (c *Cartpole) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims, []float64{MinContinuousAction})
	upperBound := mat.NewVecDense(ActionDims, []float64{MaxContinuousAction})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Cartpole) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	lower := []float64{c.positionBounds.Min, c.speedBounds.Min,
		c.angleBounds.Min, c.angularVelocityBounds.Min}
	lowerBound := mat.NewVecDense(ObservationDims, lower)

	upper := []float64{c.positionBounds.Max, c.speedBounds.Max,
		c.angleBounds.Max, c.angularVelocityBounds.Max}
	upperBound := mat.NewVecDense(ObservationDims, upper)

	return env.NewSpec(shape, env.Observation, lowerBound,
		upperBound, env.Continuous)
}

// DiscountSpec returns the discounting specification of the environment
func (c *Cartpole) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{c.discount})
	upperBound := mat.NewVecDense(1, []float64{c.discount})

	return env.NewSpec(shape, env.Discount, lowerBound,
		upperBound, env.Continuous)
}

// Step takes one environmental step given action a and returns the next
// state as a timestep.TimeStep and a bool indicating whether or not the
// episode has ended. Actions outside the action bounds are clipped.
func (c *Cartpole) Step(a mat.Vector) (ts.TimeStep, bool, error) {
	if a.Len() != ActionDims {
		return ts.TimeStep{}, false, errors.Wrapf(env.ErrIllegalAction,
			"step: expected %d action dimensions, got %d", ActionDims,
			a.Len())
	}
	action := a.AtVec(0)
	if math.IsNaN(action) || math.IsInf(action, 0) {
		return ts.TimeStep{}, false, errors.Wrapf(env.ErrIllegalAction,
			"step: action %v", action)
	}
	action = math.Max(math.Min(action, MaxContinuousAction),
		MinContinuousAction)
	force := action * ForceScale

	// Get state variables
	state := c.lastStep.Observation
	x, xDot := state.AtVec(0), state.AtVec(1)
	th, thDot := state.AtVec(2), state.AtVec(3)

	// Calculate physical variables to determine next state
	cosTheta := math.Cos(th)
	sinTheta := math.Sin(th)

	totalMass := PoleMass + CartMass
	poleMassLength := PoleMass * HalfPoleLength

	temp := (force + poleMassLength*thDot*thDot*sinTheta) / totalMass
	thAcc := (Gravity*sinTheta - cosTheta*temp) / (HalfPoleLength *
		(4.0/3.0 - PoleMass*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thAcc*cosTheta/totalMass

	// Update state variables using Euler kinematic integration
	x += Dt * xDot
	xDot += Dt * xAcc
	th += Dt * thDot
	thDot += Dt * thAcc

	next := []float64{
		math.Max(math.Min(x, c.positionBounds.Max), c.positionBounds.Min),
		xDot,
		math.Max(math.Min(th, c.angleBounds.Max), c.angleBounds.Min),
		thDot,
	}
	if floats.HasNaN(next) {
		return ts.TimeStep{}, false, fmt.Errorf("step: non-finite state %v",
			next)
	}

	// Create the new timestep
	newState := mat.NewVecDense(ObservationDims, next)
	actionVec := mat.NewVecDense(ActionDims, []float64{action})
	reward := c.GetReward(c.lastStep.Observation, actionVec, newState)
	nextStep := ts.New(ts.Mid, reward, c.discount, newState,
		c.lastStep.Number+1)

	// Check if the step ends the episode
	c.End(&nextStep)

	c.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

func (c *Cartpole) String() string {
	msg := "Cartpole  |  Position: %v  | Speed: %v  |  Angle: %v" +
		"  |  Angular Velocity: %v"

	state := c.lastStep.Observation
	position, speed := state.AtVec(0), state.AtVec(1)
	angle, velocity := state.AtVec(2), state.AtVec(3)

	return fmt.Sprintf(msg, position, speed, angle, velocity)
}
