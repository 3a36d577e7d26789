package steering

import (
	"iter"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
	"github.com/ikkentim/AIWorld-sub000/spatial"
)

// Behavior produces a desired steering force for its vehicle.
type Behavior interface {
	Calculate(dt float64) r3.Vec
}

// Environment is the world as seen by steering behaviors.
type Environment interface {
	// Query yields every entity positioned inside box.
	Query(box geom.AABB) iter.Seq[spatial.Entity]
	// Find resolves a vehicle by id. Removed vehicles are not found.
	Find(id int) (*Vehicle, bool)
	Rand() *rand.Rand
}

// Deceleration rates for Arrive. Higher values arrive more gently.
const (
	DecelerationFast   = 1.0
	DecelerationNormal = 2.0
	DecelerationSlow   = 3.0
)

// Params holds steering tunables shared by the behaviors of a vehicle.
type Params struct {
	DecelerationTweaker   float64 // Scales Arrive deceleration
	BrakingWeight         float64 // Obstacle avoidance braking
	MinDetectionBoxLength float64 // Obstacle look-ahead at zero speed
	ObstacleMargin        float64 // Extra query reach for large obstacles
	WanderRadius          float64
	WanderDistance        float64
	WanderJitter          float64 // Per second
	HeadOnThreshold       float64 // Relative heading cosine treated as head-on
	WaypointDistance      float64 // Reach at which a waypoint counts as visited
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		DecelerationTweaker:   0.3,
		BrakingWeight:         0.2,
		MinDetectionBoxLength: 4,
		ObstacleMargin:        5,
		WanderRadius:          1.2,
		WanderDistance:        2,
		WanderJitter:          40,
		HeadOnThreshold:       -0.95,
		WaypointDistance:      1,
	}
}

// SeekForce steers v straight towards target at full speed. Zero when v is
// already at target.
func SeekForce(v *Vehicle, target r3.Vec) r3.Vec {
	to := r3.Sub(target, v.Pos)
	if geom.IsZero(to) {
		return r3.Vec{}
	}
	desired := r3.Scale(v.MaxSpeed, r3.Unit(to))
	return r3.Sub(desired, v.Velocity)
}

// ArriveForce steers v towards target, slowing down as it gets close.
func ArriveForce(v *Vehicle, target r3.Vec, deceleration float64) r3.Vec {
	to := r3.Sub(target, v.Pos)
	dist := r3.Norm(to)
	if dist < 1e-9 {
		return r3.Vec{}
	}
	if deceleration <= 0 {
		deceleration = DecelerationNormal
	}
	tweaker := v.Params.DecelerationTweaker
	if tweaker <= 0 {
		tweaker = 1
	}
	speed := dist / (deceleration * tweaker)
	if speed > v.MaxSpeed {
		speed = v.MaxSpeed
	}
	desired := r3.Scale(speed/dist, to)
	return r3.Sub(desired, v.Velocity)
}

// FleeForce steers v away from target.
func FleeForce(v *Vehicle, target r3.Vec) r3.Vec {
	desired := geom.Truncate(r3.Sub(v.Pos, target), v.MaxSpeed)
	return r3.Sub(desired, v.Velocity)
}

// Seek heads for a fixed point.
type Seek struct {
	v      *Vehicle
	Target r3.Vec
}

// NewSeek creates a Seek behavior.
func NewSeek(v *Vehicle, target r3.Vec) *Seek {
	return &Seek{v: v, Target: target}
}

func (b *Seek) Calculate(float64) r3.Vec { return SeekForce(b.v, b.Target) }

// Arrive heads for a fixed point and stops there.
type Arrive struct {
	v            *Vehicle
	Target       r3.Vec
	Deceleration float64
}

// NewArrive creates an Arrive behavior.
func NewArrive(v *Vehicle, target r3.Vec, deceleration float64) *Arrive {
	return &Arrive{v: v, Target: target, Deceleration: deceleration}
}

func (b *Arrive) Calculate(float64) r3.Vec {
	return ArriveForce(b.v, b.Target, b.Deceleration)
}

// Flee moves away from a fixed point. With a positive PanicDistance the
// vehicle only flees while the point is closer than that.
type Flee struct {
	v             *Vehicle
	Target        r3.Vec
	PanicDistance float64
}

// NewFlee creates a Flee behavior.
func NewFlee(v *Vehicle, target r3.Vec, panicDistance float64) *Flee {
	return &Flee{v: v, Target: target, PanicDistance: panicDistance}
}

func (b *Flee) Calculate(float64) r3.Vec {
	if b.PanicDistance > 0 && geom.DistanceSq(b.v.Pos, b.Target) > b.PanicDistance*b.PanicDistance {
		return r3.Vec{}
	}
	return FleeForce(b.v, b.Target)
}
