// Package flocking composes the physics integrator and the estimator into
// boids and advances a whole flock one tick at a time.
package flocking

import (
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/estimator"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/geometry"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/physics"
	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/sensor"
)

// Steering constants.
const (
	SeparationRadius float32 = 25
	NeighborRadius   float32 = 50
	EdgeMargin       float32 = 50

	SeparationWeight float32 = 1.5
	AlignmentWeight  float32 = 1.0
	CohesionWeight   float32 = 1.0
	AvoidanceWeight  float32 = 2.0

	initialSpeed float32 = 2.0
)

// Arena is the rectangle agents live in. Both dimensions must be positive.
type Arena struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

func (a Arena) Center() geometry.Vector2D {
	return geometry.NewVector(a.Width/2, a.Height/2)
}

// State is the read-only view of an agent that neighbours and renderers see.
type State struct {
	ID       int               `json:"id"`
	Position geometry.Vector2D `json:"position"`
	Velocity geometry.Vector2D `json:"velocity"`
	Estimate geometry.Vector2D `json:"estimate"`
}

// IsFinite reports whether every component of s is finite.
func (s State) IsFinite() bool {
	return s.Position.IsFinite() && s.Velocity.IsFinite() && s.Estimate.IsFinite()
}

// Agent is a boid: a point mass steered by its neighbours, plus a filter that
// tracks its own position through Sensor.
type Agent struct {
	ID        int
	Body      physics.PointMass
	Estimator estimator.Kalman
	Sensor    sensor.Sensor
}

// NewAgent places agent id at (x, y). The initial heading is derived from the
// id so colocated agents do not move as one.
func NewAgent(id int, x, y float32) *Agent {
	body := physics.New(x, y)
	dir := geometry.NewVector(float32(id%3-1), float32(id%5-2))
	body.Velocity = dir.Normalize().Mul(initialSpeed)

	return &Agent{
		ID:        id,
		Body:      body,
		Estimator: estimator.New(body.Position),
		Sensor:    sensor.Perfect{},
	}
}

func (a *Agent) Position() geometry.Vector2D { return a.Body.Position }
func (a *Agent) Velocity() geometry.Vector2D { return a.Body.Velocity }
func (a *Agent) Estimate() geometry.Vector2D { return a.Estimator.State }

func (a *Agent) State() State {
	return State{
		ID:       a.ID,
		Position: a.Body.Position,
		Velocity: a.Body.Velocity,
		Estimate: a.Estimator.State,
	}
}

// Flock applies the four steering behaviours, computed against neighbors, in
// fixed order. Weights scale each behaviour after its own MaxForce clamp, so
// the combined force may exceed MaxForce.
func (a *Agent) Flock(neighbors []State, arena Arena) {
	sep := a.Separation(neighbors)
	ali := a.Alignment(neighbors)
	coh := a.Cohesion(neighbors)
	avoid := a.AvoidEdges(arena)

	a.Body.ApplyForce(sep.Mul(SeparationWeight))
	a.Body.ApplyForce(ali.Mul(AlignmentWeight))
	a.Body.ApplyForce(coh.Mul(CohesionWeight))
	a.Body.ApplyForce(avoid.Mul(AvoidanceWeight))
}

// Separation pushes away from neighbours closer than SeparationRadius,
// weighting each by the inverse of its distance.
func (a *Agent) Separation(neighbors []State) geometry.Vector2D {
	const radiusSq = SeparationRadius * SeparationRadius

	pos := a.Body.Position
	var steer geometry.Vector2D
	count := 0
	for i := range neighbors {
		other := neighbors[i].Position
		d2 := pos.DistanceSquaredTo(other)
		if d2 > 0 && d2 < radiusSq {
			d := pos.DistanceTo(other)
			steer = steer.Add(pos.Sub(other).Normalize().Div(d))
			count++
		}
	}
	if count > 0 {
		steer = steer.Div(float32(count))
	}
	if steer.LenSqr() > 0 {
		return a.steerToward(steer)
	}
	return geometry.Zero
}

// Alignment steers toward the mean velocity of neighbours within NeighborRadius.
func (a *Agent) Alignment(neighbors []State) geometry.Vector2D {
	const radiusSq = NeighborRadius * NeighborRadius

	pos := a.Body.Position
	var sum geometry.Vector2D
	count := 0
	for i := range neighbors {
		d2 := pos.DistanceSquaredTo(neighbors[i].Position)
		if d2 > 0 && d2 < radiusSq {
			sum = sum.Add(neighbors[i].Velocity)
			count++
		}
	}
	if count == 0 {
		return geometry.Zero
	}
	return a.steerToward(sum.Div(float32(count)))
}

// Cohesion seeks the mean position of neighbours within NeighborRadius.
func (a *Agent) Cohesion(neighbors []State) geometry.Vector2D {
	const radiusSq = NeighborRadius * NeighborRadius

	pos := a.Body.Position
	var sum geometry.Vector2D
	count := 0
	for i := range neighbors {
		d2 := pos.DistanceSquaredTo(neighbors[i].Position)
		if d2 > 0 && d2 < radiusSq {
			sum = sum.Add(neighbors[i].Position)
			count++
		}
	}
	if count == 0 {
		return geometry.Zero
	}
	return a.seek(sum.Div(float32(count)))
}

// AvoidEdges is a potential field for the arena walls: a unit push per axis
// inside EdgeMargin of an edge, normalized and scaled to MaxForce.
func (a *Agent) AvoidEdges(arena Arena) geometry.Vector2D {
	pos := a.Body.Position
	var push geometry.Vector2D

	if pos.X < EdgeMargin {
		push.X += 1
	}
	if pos.X > arena.Width-EdgeMargin {
		push.X -= 1
	}
	if pos.Y < EdgeMargin {
		push.Y += 1
	}
	if pos.Y > arena.Height-EdgeMargin {
		push.Y -= 1
	}

	if push.LenSqr() > 0 {
		return push.Normalize().Mul(a.Body.MaxForce)
	}
	return geometry.Zero
}

// Edges wraps the position to the opposite side once it is strictly outside
// [0, width] x [0, height]. A position exactly on the boundary stays put.
func (a *Agent) Edges(width, height float32) {
	p := &a.Body.Position
	if p.X > width {
		p.X = 0
	} else if p.X < 0 {
		p.X = width
	}
	if p.Y > height {
		p.Y = 0
	} else if p.Y < 0 {
		p.Y = height
	}
}

// UpdateEstimator runs one predict/update cycle with the current velocity and
// the sensor's reading of the true position.
func (a *Agent) UpdateEstimator(dt float32) {
	a.Estimator.Predict(a.Body.Velocity, dt)
	measurement := a.Body.Position
	if a.Sensor != nil {
		measurement = a.Sensor.Measure(measurement)
	}
	a.Estimator.Update(measurement)
}

// steerToward turns a desired direction into a bounded steering force.
func (a *Agent) steerToward(desired geometry.Vector2D) geometry.Vector2D {
	return desired.Normalize().Mul(a.Body.MaxSpeed).Sub(a.Body.Velocity).Limit(a.Body.MaxForce)
}

func (a *Agent) seek(target geometry.Vector2D) geometry.Vector2D {
	return a.steerToward(target.Sub(a.Body.Position))
}
