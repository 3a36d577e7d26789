// Package steering implements vehicles driven by weighted steering behaviors.
package steering

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

// weighted pairs a behavior with its blend weight.
type weighted struct {
	behavior Behavior
	weight   float64
}

// Vehicle is an agent moved by the sum of its steering behaviors.
type Vehicle struct {
	ID int

	Pos      r3.Vec
	Velocity r3.Vec
	Heading  r3.Vec
	Side     r3.Vec
	Up       r3.Vec

	Mass     float64
	MaxSpeed float64
	MaxForce float64
	Radius   float64

	// Force is the steering force applied during the last update.
	Force r3.Vec

	Params Params

	env       Environment
	tags      map[string]string
	behaviors []weighted
	path      []r3.Vec // stack, next waypoint last
}

// NewVehicle creates a vehicle at rest at pos facing +X.
func NewVehicle(id int, pos r3.Vec, env Environment) *Vehicle {
	v := &Vehicle{
		ID:       id,
		Pos:      pos,
		Mass:     1,
		MaxSpeed: 1,
		MaxForce: 1,
		Radius:   0.5,
		Params:   DefaultParams(),
		env:      env,
	}
	v.SetFrame(geom.NewFrame(r3.Vec{X: 1}, geom.WorldUp))
	return v
}

// Position implements spatial.Entity.
func (v *Vehicle) Position() r3.Vec { return v.Pos }

// Size implements spatial.Entity.
func (v *Vehicle) Size() float64 { return v.Radius }

// Env returns the environment the vehicle senses.
func (v *Vehicle) Env() Environment { return v.env }

// SetEnv replaces the environment.
func (v *Vehicle) SetEnv(env Environment) { v.env = env }

// Speed returns the magnitude of the velocity.
func (v *Vehicle) Speed() float64 { return r3.Norm(v.Velocity) }

// Frame returns the vehicle's local coordinate frame.
func (v *Vehicle) Frame() geom.Frame {
	return geom.Frame{Heading: v.Heading, Side: v.Side, Up: v.Up}
}

// SetFrame orients the vehicle.
func (v *Vehicle) SetFrame(f geom.Frame) {
	v.Heading = f.Heading
	v.Side = f.Side
	v.Up = f.Up
}

// SetTag sets a key/value tag used by flocking filters.
func (v *Vehicle) SetTag(key, value string) {
	if v.tags == nil {
		v.tags = make(map[string]string)
	}
	v.tags[key] = value
}

// Tag returns the value stored under key.
func (v *Vehicle) Tag(key string) (string, bool) {
	val, ok := v.tags[key]
	return val, ok
}

// MatchesTag reports whether the vehicle carries key=value. An empty key
// matches every vehicle.
func (v *Vehicle) MatchesTag(key, value string) bool {
	if key == "" {
		return true
	}
	val, ok := v.tags[key]
	return ok && val == value
}

// AddBehavior activates a behavior with the given weight.
func (v *Vehicle) AddBehavior(b Behavior, weight float64) {
	v.behaviors = append(v.behaviors, weighted{behavior: b, weight: weight})
}

// Behaviors returns the active behaviors in activation order.
func (v *Vehicle) Behaviors() []Behavior {
	out := make([]Behavior, len(v.behaviors))
	for i, w := range v.behaviors {
		out[i] = w.behavior
	}
	return out
}

// RemoveBehavior deactivates b. Returns false if it was not active.
func (v *Vehicle) RemoveBehavior(b Behavior) bool {
	for i, w := range v.behaviors {
		if w.behavior == b {
			v.behaviors = append(v.behaviors[:i], v.behaviors[i+1:]...)
			return true
		}
	}
	return false
}

// ClearBehaviors deactivates every behavior.
func (v *Vehicle) ClearBehaviors() { v.behaviors = nil }

// SetPath replaces the waypoint stack. Points are given next-to-visit last,
// the order nav.Graph.ShortestPath produces.
func (v *Vehicle) SetPath(points []r3.Vec) {
	v.path = append(v.path[:0], points...)
}

// PushWaypoint puts p on top of the path stack.
func (v *Vehicle) PushWaypoint(p r3.Vec) { v.path = append(v.path, p) }

// PeekWaypoint returns the next waypoint to visit.
func (v *Vehicle) PeekWaypoint() (r3.Vec, bool) {
	if len(v.path) == 0 {
		return r3.Vec{}, false
	}
	return v.path[len(v.path)-1], true
}

// PopWaypoint removes and returns the next waypoint.
func (v *Vehicle) PopWaypoint() (r3.Vec, bool) {
	p, ok := v.PeekWaypoint()
	if ok {
		v.path = v.path[:len(v.path)-1]
	}
	return p, ok
}

// Waypoints returns a copy of the path stack, next waypoint last.
func (v *Vehicle) Waypoints() []r3.Vec { return slices.Clone(v.path) }

// PathLen returns the number of waypoints left.
func (v *Vehicle) PathLen() int { return len(v.path) }

// AdvancePath pops every waypoint within reach of the vehicle and returns how
// many were popped.
func (v *Vehicle) AdvancePath(reach float64) int {
	n := 0
	for {
		p, ok := v.PeekWaypoint()
		if !ok || geom.DistanceSq(p, v.Pos) > reach*reach {
			return n
		}
		v.path = v.path[:len(v.path)-1]
		n++
	}
}

// SteeringForce returns the weighted sum of all active behaviors truncated to
// MaxForce.
func (v *Vehicle) SteeringForce(dt float64) r3.Vec {
	var force r3.Vec
	for _, w := range v.behaviors {
		if w.weight == 0 {
			continue
		}
		force = r3.Add(force, r3.Scale(w.weight, w.behavior.Calculate(dt)))
	}
	return geom.Truncate(force, v.MaxForce)
}

// Integrate applies force for dt seconds.
func (v *Vehicle) Integrate(force r3.Vec, dt float64) {
	mass := v.Mass
	if mass <= 0 {
		mass = 1
	}
	accel := r3.Scale(1/mass, force)
	v.Velocity = geom.Truncate(r3.Add(v.Velocity, r3.Scale(dt, accel)), v.MaxSpeed)
	v.Pos = r3.Add(v.Pos, r3.Scale(dt, v.Velocity))

	if !geom.IsZero(v.Velocity) {
		up := v.Up
		if geom.IsZero(up) {
			up = geom.WorldUp
		}
		v.SetFrame(geom.NewFrame(v.Velocity, up))
	}
}

// Update computes the steering force and integrates it. Returns the force.
func (v *Vehicle) Update(dt float64) r3.Vec {
	v.Force = v.SteeringForce(dt)
	v.Integrate(v.Force, dt)
	return v.Force
}
