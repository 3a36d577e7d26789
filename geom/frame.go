package geom

import "gonum.org/v1/gonum/spatial/r3"

// Frame is an orthonormal local coordinate frame. Local X runs along Heading,
// local Y along Side and local Z along Up.
type Frame struct {
	Heading r3.Vec
	Side    r3.Vec
	Up      r3.Vec
}

// NewFrame builds a frame from a heading and an up hint. When heading is
// parallel to up another axis is used as the hint.
func NewFrame(heading, up r3.Vec) Frame {
	h := Unit(heading)
	if IsZero(h) {
		h = r3.Vec{X: 1}
	}
	side := r3.Cross(up, h)
	if IsZero(side) {
		side = r3.Cross(r3.Vec{Z: 1}, h)
		if IsZero(side) {
			side = r3.Cross(r3.Vec{X: 1}, h)
		}
	}
	side = r3.Unit(side)
	return Frame{
		Heading: h,
		Side:    side,
		Up:      r3.Cross(h, side),
	}
}

// VectorToLocal expresses a world direction in frame coordinates.
func (f Frame) VectorToLocal(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: r3.Dot(v, f.Heading),
		Y: r3.Dot(v, f.Side),
		Z: r3.Dot(v, f.Up),
	}
}

// VectorToWorld expresses a local direction in world coordinates.
func (f Frame) VectorToWorld(v r3.Vec) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(v.X, f.Heading), r3.Scale(v.Y, f.Side)), r3.Scale(v.Z, f.Up))
}

// PointToLocal maps a world point into the frame anchored at origin.
func (f Frame) PointToLocal(p, origin r3.Vec) r3.Vec {
	return f.VectorToLocal(r3.Sub(p, origin))
}

// PointToWorld maps a local point of the frame anchored at origin to world space.
func (f Frame) PointToWorld(p, origin r3.Vec) r3.Vec {
	return r3.Add(origin, f.VectorToWorld(p))
}
