package steering

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

// rngOf returns the environment's random source, or a fixed-seed fallback
// for vehicles without an environment.
func rngOf(v *Vehicle) *rand.Rand {
	if v.env != nil {
		if r := v.env.Rand(); r != nil {
			return r
		}
	}
	return rand.New(rand.NewSource(int64(v.ID)))
}

// Wander jitters a target on a sphere projected ahead of the vehicle.
type Wander struct {
	v        *Vehicle
	Radius   float64
	Distance float64
	Jitter   float64

	target r3.Vec // on the sphere, local coordinates
	rng    *rand.Rand
}

// NewWander creates a Wander behavior. Non-positive values fall back to the
// vehicle's Params.
func NewWander(v *Vehicle, radius, distance, jitter float64) *Wander {
	if radius <= 0 {
		radius = v.Params.WanderRadius
	}
	if distance <= 0 {
		distance = v.Params.WanderDistance
	}
	if jitter <= 0 {
		jitter = v.Params.WanderJitter
	}
	return &Wander{
		v:        v,
		Radius:   radius,
		Distance: distance,
		Jitter:   jitter,
		target:   r3.Vec{X: radius},
	}
}

// Target returns the current wander point in world coordinates.
func (b *Wander) Target() r3.Vec {
	local := r3.Add(b.target, r3.Vec{X: b.Distance})
	return b.v.Frame().PointToWorld(local, b.v.Pos)
}

func (b *Wander) Calculate(dt float64) r3.Vec {
	if b.rng == nil {
		b.rng = rngOf(b.v)
	}
	jitter := b.Jitter * dt
	b.target = r3.Add(b.target, r3.Vec{
		X: (b.rng.Float64()*2 - 1) * jitter,
		Y: (b.rng.Float64()*2 - 1) * jitter,
		Z: (b.rng.Float64()*2 - 1) * jitter,
	})
	if geom.IsZero(b.target) {
		b.target = r3.Vec{X: b.Radius}
	} else {
		b.target = r3.Scale(b.Radius, r3.Unit(b.target))
	}
	return r3.Sub(b.Target(), b.v.Pos)
}

// Explore roams between random points on the horizontal plane around a home
// position.
type Explore struct {
	v     *Vehicle
	Home  r3.Vec
	Range float64

	target  r3.Vec
	hasGoal bool
	rng     *rand.Rand
}

// NewExplore creates an Explore behavior around the vehicle's current
// position.
func NewExplore(v *Vehicle, rng float64) *Explore {
	return &Explore{v: v, Home: v.Pos, Range: rng}
}

// Target returns the point currently explored towards.
func (b *Explore) Target() (r3.Vec, bool) { return b.target, b.hasGoal }

func (b *Explore) pick() {
	if b.rng == nil {
		b.rng = rngOf(b.v)
	}
	b.target = r3.Vec{
		X: b.Home.X + (b.rng.Float64()*2-1)*b.Range,
		Y: b.Home.Y,
		Z: b.Home.Z + (b.rng.Float64()*2-1)*b.Range,
	}
	b.hasGoal = true
}

func (b *Explore) Calculate(float64) r3.Vec {
	if b.Range <= 0 {
		return r3.Vec{}
	}
	reach := b.v.Params.WaypointDistance
	if !b.hasGoal || geom.DistanceSq(b.target, b.v.Pos) <= reach*reach {
		b.pick()
	}
	return ArriveForce(b.v, b.target, DecelerationNormal)
}

// FollowPath drives along the vehicle's waypoint stack, seeking intermediate
// waypoints and arriving at the last one. Reached waypoints are popped by
// the owner of the path. Once the stack is empty the vehicle keeps arriving
// at the final waypoint so it comes to rest there.
type FollowPath struct {
	v *Vehicle

	last    r3.Vec
	hasLast bool
}

// NewFollowPath creates a FollowPath behavior.
func NewFollowPath(v *Vehicle) *FollowPath {
	return &FollowPath{v: v}
}

func (b *FollowPath) Calculate(float64) r3.Vec {
	next, ok := b.v.PeekWaypoint()
	switch {
	case !ok && b.hasLast:
		return ArriveForce(b.v, b.last, DecelerationNormal)
	case !ok:
		return r3.Vec{}
	case b.v.PathLen() == 1:
		b.last, b.hasLast = next, true
		return ArriveForce(b.v, next, DecelerationNormal)
	}
	b.hasLast = false
	return SeekForce(b.v, next)
}
