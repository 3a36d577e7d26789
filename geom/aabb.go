// Package geom provides the bounding-box and vector primitives shared by the
// spatial index, the navigation graph and the steering behaviors.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AABB is an axis-aligned bounding box described by its center and half extent.
// Boundaries are closed: points on a face are contained.
type AABB struct {
	Center     r3.Vec
	HalfExtent r3.Vec
}

// NewAABB creates a box around center. Negative half extents are flipped.
func NewAABB(center, halfExtent r3.Vec) AABB {
	return AABB{
		Center: center,
		HalfExtent: r3.Vec{
			X: math.Abs(halfExtent.X),
			Y: math.Abs(halfExtent.Y),
			Z: math.Abs(halfExtent.Z),
		},
	}
}

// NewCube creates a box with the same half extent on every axis.
func NewCube(center r3.Vec, half float64) AABB {
	return NewAABB(center, r3.Vec{X: half, Y: half, Z: half})
}

// AABBFromMinMax creates the box spanning two corners.
func AABBFromMinMax(lo, hi r3.Vec) AABB {
	return NewAABB(r3.Scale(0.5, r3.Add(lo, hi)), r3.Scale(0.5, r3.Sub(hi, lo)))
}

// Min returns the lower corner.
func (b AABB) Min() r3.Vec { return r3.Sub(b.Center, b.HalfExtent) }

// Max returns the upper corner.
func (b AABB) Max() r3.Vec { return r3.Add(b.Center, b.HalfExtent) }

// Box converts to a gonum box.
func (b AABB) Box() r3.Box {
	return r3.Box{Min: b.Min(), Max: b.Max()}
}

// ContainsPoint reports whether p lies inside the box or on its boundary.
func (b AABB) ContainsPoint(p r3.Vec) bool {
	return math.Abs(p.X-b.Center.X) <= b.HalfExtent.X &&
		math.Abs(p.Y-b.Center.Y) <= b.HalfExtent.Y &&
		math.Abs(p.Z-b.Center.Z) <= b.HalfExtent.Z
}

// Intersects reports whether the two boxes overlap. Touching faces count.
func (b AABB) Intersects(other AABB) bool {
	return math.Abs(b.Center.X-other.Center.X) <= b.HalfExtent.X+other.HalfExtent.X &&
		math.Abs(b.Center.Y-other.Center.Y) <= b.HalfExtent.Y+other.HalfExtent.Y &&
		math.Abs(b.Center.Z-other.Center.Z) <= b.HalfExtent.Z+other.HalfExtent.Z
}

// octantSigns lists the child order used when a box is split in eight.
var octantSigns = [8]r3.Vec{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: -1, Z: -1},
}

// Octant returns child i (0..7) of an eight-way split at the center.
func (b AABB) Octant(i int) AABB {
	half := r3.Scale(0.5, b.HalfExtent)
	s := octantSigns[i]
	return AABB{
		Center: r3.Vec{
			X: b.Center.X + s.X*half.X,
			Y: b.Center.Y + s.Y*half.Y,
			Z: b.Center.Z + s.Z*half.Z,
		},
		HalfExtent: half,
	}
}
