package steering

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

// constBehavior always returns the same force.
type constBehavior struct{ f r3.Vec }

func (b constBehavior) Calculate(float64) r3.Vec { return b.f }

func vecNear(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestSteeringForceWeightedSum(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	v.MaxForce = 100
	v.AddBehavior(constBehavior{r3.Vec{X: 1}}, 2)
	v.AddBehavior(constBehavior{r3.Vec{Y: 4}}, 0.5)
	v.AddBehavior(constBehavior{r3.Vec{Z: 9}}, 0)

	got := v.SteeringForce(0.1)
	want := r3.Vec{X: 2, Y: 2}
	if !vecNear(got, want, eps) {
		t.Errorf("SteeringForce = %v, want %v", got, want)
	}
}

func TestSteeringForceTruncated(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	v.MaxForce = 1.5
	v.AddBehavior(constBehavior{r3.Vec{X: 3, Y: 4}}, 1)

	got := v.SteeringForce(0.1)
	if math.Abs(r3.Norm(got)-1.5) > eps {
		t.Errorf("|force| = %v, want 1.5", r3.Norm(got))
	}
	if !vecNear(r3.Unit(got), r3.Vec{X: 0.6, Y: 0.8}, eps) {
		t.Errorf("force direction = %v, want (0.6, 0.8, 0)", r3.Unit(got))
	}
}

func TestSteeringForceNoBehaviors(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	if got := v.SteeringForce(1); got != (r3.Vec{}) {
		t.Errorf("SteeringForce without behaviors = %v, want zero", got)
	}
}

func TestIntegrate(t *testing.T) {
	tests := []struct {
		name     string
		mass     float64
		maxSpeed float64
		force    r3.Vec
		dt       float64
		wantVel  r3.Vec
		wantPos  r3.Vec
	}{
		{"acceleration by mass", 2, 10, r3.Vec{X: 2}, 0.5, r3.Vec{X: 0.5}, r3.Vec{X: 0.25}},
		{"speed clamp", 1, 2, r3.Vec{Z: 100}, 1, r3.Vec{Z: 2}, r3.Vec{Z: 2}},
		{"zero mass treated as unit", 0, 10, r3.Vec{Y: 1}, 1, r3.Vec{Y: 1}, r3.Vec{Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVehicle(1, r3.Vec{}, nil)
			v.Mass = tt.mass
			v.MaxSpeed = tt.maxSpeed
			v.Integrate(tt.force, tt.dt)

			if !vecNear(v.Velocity, tt.wantVel, eps) {
				t.Errorf("velocity = %v, want %v", v.Velocity, tt.wantVel)
			}
			if !vecNear(v.Pos, tt.wantPos, eps) {
				t.Errorf("position = %v, want %v", v.Pos, tt.wantPos)
			}
			if !vecNear(v.Heading, r3.Unit(tt.wantVel), eps) {
				t.Errorf("heading = %v, want %v", v.Heading, r3.Unit(tt.wantVel))
			}
		})
	}
}

func TestIntegrateKeepsFrameOrthonormal(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	v.MaxSpeed = 5
	forces := []r3.Vec{{X: 1, Y: 2, Z: 3}, {X: -4, Z: 1}, {Y: 1}, {X: 2, Y: -1, Z: -2}}
	for _, f := range forces {
		v.Integrate(f, 0.3)
		if r3.Norm(v.Velocity) > v.MaxSpeed+eps {
			t.Fatalf("speed %v exceeds max %v", r3.Norm(v.Velocity), v.MaxSpeed)
		}
		for _, axis := range []r3.Vec{v.Heading, v.Side, v.Up} {
			if math.Abs(r3.Norm(axis)-1) > 1e-6 {
				t.Errorf("axis %v is not unit length", axis)
			}
		}
		if math.Abs(r3.Dot(v.Heading, v.Side)) > 1e-6 || math.Abs(r3.Dot(v.Heading, v.Up)) > 1e-6 {
			t.Errorf("frame not orthogonal: %v %v %v", v.Heading, v.Side, v.Up)
		}
	}
}

func TestIntegrateAtRestKeepsHeading(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	v.Heading = r3.Vec{Z: 1}
	v.Integrate(r3.Vec{}, 1)
	if v.Heading != (r3.Vec{Z: 1}) {
		t.Errorf("heading changed at rest: %v", v.Heading)
	}
}

func TestUpdateRecordsForce(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	v.MaxSpeed = 10
	v.AddBehavior(constBehavior{r3.Vec{X: 0.5}}, 1)
	f := v.Update(1)
	if f != v.Force || f != (r3.Vec{X: 0.5}) {
		t.Errorf("Update force = %v (recorded %v), want (0.5,0,0)", f, v.Force)
	}
	if v.Pos.X != 0.5 {
		t.Errorf("position = %v, want x=0.5", v.Pos)
	}
}

func TestPathStack(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	if _, ok := v.PeekWaypoint(); ok {
		t.Fatal("new vehicle should have no path")
	}

	// Finish first, next waypoint last.
	v.SetPath([]r3.Vec{{X: 30}, {X: 20}, {X: 10}})
	v.PushWaypoint(r3.Vec{X: 0.5})
	if v.PathLen() != 4 {
		t.Fatalf("PathLen = %d, want 4", v.PathLen())
	}

	if n := v.AdvancePath(1); n != 1 {
		t.Errorf("AdvancePath popped %d, want 1", n)
	}
	if p, _ := v.PeekWaypoint(); p != (r3.Vec{X: 10}) {
		t.Errorf("next waypoint = %v, want (10,0,0)", p)
	}
	if p, ok := v.PopWaypoint(); !ok || p != (r3.Vec{X: 10}) {
		t.Errorf("PopWaypoint = %v,%v", p, ok)
	}
	v.Pos = r3.Vec{X: 25}
	if n := v.AdvancePath(6); n != 2 || v.PathLen() != 0 {
		t.Errorf("AdvancePath = %d, remaining %d; want 2, 0", n, v.PathLen())
	}
}

func TestSetPathCopies(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	pts := []r3.Vec{{X: 1}, {X: 2}}
	v.SetPath(pts)
	pts[1] = r3.Vec{X: 99}
	if p, _ := v.PeekWaypoint(); p != (r3.Vec{X: 2}) {
		t.Errorf("path aliased caller slice: top = %v", p)
	}

	got := v.Waypoints()
	got[0] = r3.Vec{X: -1}
	if w := v.Waypoints(); len(w) != 2 || w[0] != (r3.Vec{X: 1}) {
		t.Errorf("Waypoints exposed internal storage: %v", w)
	}
}

func TestTagsAndBehaviors(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	v.SetTag("team", "red")
	if val, ok := v.Tag("team"); !ok || val != "red" {
		t.Errorf("Tag = %q,%v", val, ok)
	}
	if !v.MatchesTag("", "") || !v.MatchesTag("team", "red") || v.MatchesTag("team", "blue") || v.MatchesTag("role", "") {
		t.Error("MatchesTag gave the wrong answer")
	}

	a := NewSeek(v, r3.Vec{X: 1})
	b := NewFlee(v, r3.Vec{X: 1}, 0)
	v.AddBehavior(a, 1)
	v.AddBehavior(b, 1)
	if !v.RemoveBehavior(a) || v.RemoveBehavior(a) {
		t.Error("RemoveBehavior should succeed exactly once")
	}
	if got := v.Behaviors(); len(got) != 1 || got[0] != Behavior(b) {
		t.Errorf("Behaviors = %v", got)
	}
	v.ClearBehaviors()
	if len(v.Behaviors()) != 0 {
		t.Error("ClearBehaviors left behaviors active")
	}
}
