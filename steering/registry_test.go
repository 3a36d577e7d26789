package steering

import (
	"errors"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNamesSorted(t *testing.T) {
	names := Names()
	want := []string{
		"alignment", "arrive", "avoid_obstacles", "cohesion", "evade",
		"explore", "flee", "follow_path", "offset_pursuit", "pursuit",
		"seek", "separation", "wander",
	}
	if !slices.Equal(names, want) {
		t.Errorf("Names = %v, want %v", names, want)
	}
	for _, n := range names {
		d, ok := Lookup(n)
		if !ok || d.Name != n {
			t.Errorf("Lookup(%q) = %+v, %v", n, d, ok)
		}
	}
}

func TestCreate(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)

	tests := []struct {
		name       string
		behavior   string
		args       []any
		wantWeight float64
		check      func(t *testing.T, b Behavior)
	}{
		{"seek from yaml sequence", "seek", []any{2, []any{1, 2.5, 3}}, 2, func(t *testing.T, b Behavior) {
			s, ok := b.(*Seek)
			if !ok || s.Target != (r3.Vec{X: 1, Y: 2.5, Z: 3}) {
				t.Errorf("got %#v", b)
			}
		}},
		{"arrive default deceleration", "arrive", []any{0.5, []float64{4, 0, 4}}, 0.5, func(t *testing.T, b Behavior) {
			a, ok := b.(*Arrive)
			if !ok || a.Deceleration != DecelerationNormal || a.Target != (r3.Vec{X: 4, Z: 4}) {
				t.Errorf("got %#v", b)
			}
		}},
		{"pursuit integral float id", "pursuit", []any{1.0, 7.0}, 1, func(t *testing.T, b Behavior) {
			if p, ok := b.(*Pursuit); !ok || p.TargetID != 7 {
				t.Errorf("got %#v", b)
			}
		}},
		{"separation with tag", "separation", []any{3, 10, "team", "red"}, 3, func(t *testing.T, b Behavior) {
			s, ok := b.(*Separation)
			if !ok || s.Range != 10 || s.Key != "team" || s.Value != "red" {
				t.Errorf("got %#v", b)
			}
		}},
		{"offset pursuit vec", "offset_pursuit", []any{1, 4, r3.Vec{X: -2, Z: 1}}, 1, func(t *testing.T, b Behavior) {
			o, ok := b.(*OffsetPursuit)
			if !ok || o.LeaderID != 4 || o.Offset != (r3.Vec{X: -2, Z: 1}) {
				t.Errorf("got %#v", b)
			}
		}},
		{"no parameters", "avoid_obstacles", []any{float32(1.5)}, 1.5, func(t *testing.T, b Behavior) {
			if _, ok := b.(*AvoidObstacles); !ok {
				t.Errorf("got %#v", b)
			}
		}},
		{"wander defaults", "wander", []any{1}, 1, func(t *testing.T, b Behavior) {
			w, ok := b.(*Wander)
			if !ok || w.Radius != v.Params.WanderRadius || w.Jitter != v.Params.WanderJitter {
				t.Errorf("got %#v", b)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, w, err := Create(tt.behavior, v, tt.args)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if w != tt.wantWeight {
				t.Errorf("weight = %v, want %v", w, tt.wantWeight)
			}
			tt.check(t, b)
		})
	}
}

func TestCreateErrors(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)

	tests := []struct {
		name     string
		behavior string
		args     []any
		want     error
	}{
		{"unknown", "teleport", []any{1}, ErrUnknownBehavior},
		{"missing weight", "seek", nil, ErrBadParameter},
		{"weight not a number", "seek", []any{"heavy", []any{0, 0, 0}}, ErrBadParameter},
		{"missing required", "seek", []any{1}, ErrBadParameter},
		{"too many", "pursuit", []any{1, 2, 3}, ErrBadParameter},
		{"fractional int", "pursuit", []any{1, 2.5}, ErrBadParameter},
		{"short vector", "seek", []any{1, []any{1, 2}}, ErrBadParameter},
		{"string where float", "explore", []any{1, "far"}, ErrBadParameter},
		{"number where string", "cohesion", []any{1, 5, 3}, ErrBadParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Create(tt.behavior, v, tt.args)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	v := NewVehicle(1, r3.Vec{}, nil)
	v.MaxSpeed = 2
	v.MaxForce = 10
	if _, err := Apply("seek", v, []any{0.5, []any{10, 0, 0}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := Apply("nope", v, []any{1}); err == nil {
		t.Fatal("Apply of unknown behavior should fail")
	}
	if len(v.Behaviors()) != 1 {
		t.Fatalf("behaviors = %d, want 1", len(v.Behaviors()))
	}
	if got := v.SteeringForce(0.1); !vecNear(got, r3.Vec{X: 1}, 1e-9) {
		t.Errorf("weighted seek = %v, want (1,0,0)", got)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{Float: "float", Int: "int", String: "string", Vec3: "vec3", Kind(9): "Kind(9)"} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", uint8(k), got, want)
		}
	}
}
