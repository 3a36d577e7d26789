package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon is the length under which a vector is treated as zero.
const epsilon = 1e-9

// WorldUp is the default up axis for local frames.
var WorldUp = r3.Vec{Y: 1}

// IsZero reports whether v has (near) zero length.
func IsZero(v r3.Vec) bool {
	return r3.Norm2(v) < epsilon*epsilon
}

// Truncate clamps the length of v to limit, keeping its direction.
// Vectors already within the limit are returned unchanged.
func Truncate(v r3.Vec, limit float64) r3.Vec {
	if limit <= 0 {
		return r3.Vec{}
	}
	lenSq := r3.Norm2(v)
	if lenSq <= limit*limit {
		return v
	}
	return r3.Scale(limit/math.Sqrt(lenSq), v)
}

// DistanceSq returns the squared distance between two points.
func DistanceSq(a, b r3.Vec) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// ManhattanDistance returns the L1 distance between two points.
func ManhattanDistance(a, b r3.Vec) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y) + math.Abs(a.Z-b.Z)
}

// Unit normalizes v, returning the zero vector for zero input.
func Unit(v r3.Vec) r3.Vec {
	if IsZero(v) {
		return r3.Vec{}
	}
	return r3.Unit(v)
}
