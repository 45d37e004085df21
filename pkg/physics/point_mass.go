// Package physics holds the point-mass integrator that moves every agent.
package physics

import "github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/geometry"

const (
	DefaultMaxSpeed float32 = 4.0
	DefaultMaxForce float32 = 0.1
)

// PointMass accumulates forces into Acceleration and integrates once per tick.
// One Integrate call is one tick: there is no dt, callers that want another
// time unit scale their forces.
type PointMass struct {
	Position     geometry.Vector2D `json:"position"`
	Velocity     geometry.Vector2D `json:"velocity"`
	Acceleration geometry.Vector2D `json:"acceleration"`
	MaxSpeed     float32           `json:"maxSpeed"`
	MaxForce     float32           `json:"maxForce"`
}

// New returns a body at rest at (x, y) with the default limits.
func New(x, y float32) PointMass {
	return PointMass{
		Position: geometry.NewVector(x, y),
		MaxSpeed: DefaultMaxSpeed,
		MaxForce: DefaultMaxForce,
	}
}

// ApplyForce adds f to the acceleration accumulated since the last Integrate.
func (p *PointMass) ApplyForce(f geometry.Vector2D) {
	p.Acceleration = p.Acceleration.Add(f)
}

// Integrate advances one tick. The speed clamp happens before the position
// update so a body never moves further than MaxSpeed in a tick.
func (p *PointMass) Integrate() {
	p.Velocity = p.Velocity.Add(p.Acceleration).Limit(p.MaxSpeed)
	p.Position = p.Position.Add(p.Velocity)
	p.Acceleration = geometry.Zero
}

// Speed returns |Velocity|.
func (p PointMass) Speed() float32 {
	return p.Velocity.Len()
}
