package steering

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

// Obstacle is a static spherical body vehicles steer around.
type Obstacle struct {
	ID     int
	Center r3.Vec
	Radius float64
}

// Position implements spatial.Entity.
func (o *Obstacle) Position() r3.Vec { return o.Center }

// Size implements spatial.Entity.
func (o *Obstacle) Size() float64 { return o.Radius }

// AvoidObstacles steers clear of obstacles inside a detection box that
// extends ahead of the vehicle and grows with its speed.
type AvoidObstacles struct {
	v *Vehicle
}

// NewAvoidObstacles creates an AvoidObstacles behavior.
func NewAvoidObstacles(v *Vehicle) *AvoidObstacles {
	return &AvoidObstacles{v: v}
}

// DetectionLength returns the current look-ahead distance.
func (b *AvoidObstacles) DetectionLength() float64 {
	v := b.v
	length := v.Params.MinDetectionBoxLength
	if v.MaxSpeed > 0 {
		length += length * v.Speed() / v.MaxSpeed
	}
	return length
}

func (b *AvoidObstacles) Calculate(float64) r3.Vec {
	v := b.v
	if v.env == nil {
		return r3.Vec{}
	}
	length := b.DetectionLength()
	if length <= 0 {
		return r3.Vec{}
	}
	frame := v.Frame()
	box := geom.NewCube(
		r3.Add(v.Pos, r3.Scale(length/2, v.Heading)),
		length/2+v.Radius+v.Params.ObstacleMargin,
	)

	var (
		closest    *Obstacle
		closestX   = math.Inf(1)
		closestLoc r3.Vec
	)
	for e := range v.env.Query(box) {
		ob, ok := e.(*Obstacle)
		if !ok {
			continue
		}
		local := frame.PointToLocal(ob.Center, v.Pos)
		if local.X < 0 {
			continue
		}
		reach := ob.Radius + v.Radius
		if local.X-reach > length {
			continue
		}
		lateral := math.Hypot(local.Y, local.Z)
		if lateral >= reach {
			continue
		}
		// Nearest intersection of the heading line with the expanded circle.
		root := math.Sqrt(reach*reach - lateral*lateral)
		ip := local.X - root
		if ip <= 0 {
			ip = local.X + root
		}
		if ip < closestX {
			closestX = ip
			closest = ob
			closestLoc = local
		}
	}
	if closest == nil {
		return r3.Vec{}
	}

	reach := closest.Radius + v.Radius
	multiplier := 1 + (length-closestLoc.X)/length
	lateral := math.Hypot(closestLoc.Y, closestLoc.Z)

	var away r3.Vec
	if lateral < 1e-9 {
		away = r3.Vec{Y: 1}
	} else {
		away = r3.Vec{Y: -closestLoc.Y / lateral, Z: -closestLoc.Z / lateral}
	}
	force := r3.Scale((reach-lateral)*multiplier, away)
	force.X = (reach - closestLoc.X) * v.Params.BrakingWeight
	return frame.VectorToWorld(force)
}
