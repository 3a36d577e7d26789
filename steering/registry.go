package steering

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrUnknownBehavior is returned when no behavior is registered under a name.
	ErrUnknownBehavior = errors.New("steering: unknown behavior")
	// ErrBadParameter is returned when a behavior argument is missing or has
	// the wrong type.
	ErrBadParameter = errors.New("steering: bad parameter")
)

// Kind is the type of a behavior parameter.
type Kind uint8

const (
	Float Kind = iota
	Int
	String
	Vec3
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case String:
		return "string"
	case Vec3:
		return "vec3"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParamSpec describes one positional behavior parameter. A nil Default makes
// the parameter required.
type ParamSpec struct {
	Name    string
	Kind    Kind
	Default any
}

// Descriptor describes a constructible behavior. New receives the converted
// arguments in declaration order: float64, int, string or r3.Vec.
type Descriptor struct {
	Name   string
	Params []ParamSpec
	New    func(v *Vehicle, args []any) Behavior
}

// registry is the static behavior table.
var registry = map[string]Descriptor{}

func register(d Descriptor) { registry[d.Name] = d }

func init() {
	register(Descriptor{
		Name:   "seek",
		Params: []ParamSpec{{Name: "target", Kind: Vec3}},
		New:    func(v *Vehicle, a []any) Behavior { return NewSeek(v, a[0].(r3.Vec)) },
	})
	register(Descriptor{
		Name: "arrive",
		Params: []ParamSpec{
			{Name: "target", Kind: Vec3},
			{Name: "deceleration", Kind: Float, Default: DecelerationNormal},
		},
		New: func(v *Vehicle, a []any) Behavior { return NewArrive(v, a[0].(r3.Vec), a[1].(float64)) },
	})
	register(Descriptor{
		Name: "flee",
		Params: []ParamSpec{
			{Name: "target", Kind: Vec3},
			{Name: "panic_distance", Kind: Float, Default: 0.0},
		},
		New: func(v *Vehicle, a []any) Behavior { return NewFlee(v, a[0].(r3.Vec), a[1].(float64)) },
	})
	register(Descriptor{
		Name:   "pursuit",
		Params: []ParamSpec{{Name: "target_id", Kind: Int}},
		New:    func(v *Vehicle, a []any) Behavior { return NewPursuit(v, a[0].(int)) },
	})
	register(Descriptor{
		Name: "evade",
		Params: []ParamSpec{
			{Name: "pursuer_id", Kind: Int},
			{Name: "panic_range", Kind: Float, Default: 0.0},
		},
		New: func(v *Vehicle, a []any) Behavior { return NewEvade(v, a[0].(int), a[1].(float64)) },
	})
	flock := []ParamSpec{
		{Name: "range", Kind: Float},
		{Name: "key", Kind: String, Default: ""},
		{Name: "value", Kind: String, Default: ""},
	}
	register(Descriptor{
		Name:   "separation",
		Params: flock,
		New: func(v *Vehicle, a []any) Behavior {
			return NewSeparation(v, a[0].(float64), a[1].(string), a[2].(string))
		},
	})
	register(Descriptor{
		Name:   "cohesion",
		Params: flock,
		New: func(v *Vehicle, a []any) Behavior {
			return NewCohesion(v, a[0].(float64), a[1].(string), a[2].(string))
		},
	})
	register(Descriptor{
		Name:   "alignment",
		Params: flock,
		New: func(v *Vehicle, a []any) Behavior {
			return NewAlignment(v, a[0].(float64), a[1].(string), a[2].(string))
		},
	})
	register(Descriptor{
		Name: "avoid_obstacles",
		New:  func(v *Vehicle, _ []any) Behavior { return NewAvoidObstacles(v) },
	})
	register(Descriptor{
		Name: "wander",
		Params: []ParamSpec{
			{Name: "radius", Kind: Float, Default: 0.0},
			{Name: "distance", Kind: Float, Default: 0.0},
			{Name: "jitter", Kind: Float, Default: 0.0},
		},
		New: func(v *Vehicle, a []any) Behavior {
			return NewWander(v, a[0].(float64), a[1].(float64), a[2].(float64))
		},
	})
	register(Descriptor{
		Name:   "explore",
		Params: []ParamSpec{{Name: "range", Kind: Float}},
		New:    func(v *Vehicle, a []any) Behavior { return NewExplore(v, a[0].(float64)) },
	})
	register(Descriptor{
		Name: "offset_pursuit",
		Params: []ParamSpec{
			{Name: "leader_id", Kind: Int},
			{Name: "offset", Kind: Vec3},
		},
		New: func(v *Vehicle, a []any) Behavior { return NewOffsetPursuit(v, a[0].(int), a[1].(r3.Vec)) },
	})
	register(Descriptor{
		Name: "follow_path",
		New:  func(v *Vehicle, _ []any) Behavior { return NewFollowPath(v) },
	})
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (Descriptor, bool) {
	d, ok := registry[name]
	return d, ok
}

// Names returns all registered behavior names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Create builds the named behavior for v. args[0] is the blend weight; the
// remaining arguments are matched positionally against the descriptor's
// parameters.
func Create(name string, v *Vehicle, args []any) (Behavior, float64, error) {
	d, ok := registry[name]
	if !ok {
		return nil, 0, fmt.Errorf("%q: %w", name, ErrUnknownBehavior)
	}
	if len(args) == 0 {
		return nil, 0, fmt.Errorf("%s: missing weight: %w", name, ErrBadParameter)
	}
	weight, err := convert(Float, args[0])
	if err != nil {
		return nil, 0, fmt.Errorf("%s: weight: %w", name, err)
	}
	rest := args[1:]
	if len(rest) > len(d.Params) {
		return nil, 0, fmt.Errorf("%s: %d arguments, at most %d accepted: %w",
			name, len(rest), len(d.Params), ErrBadParameter)
	}

	values := make([]any, len(d.Params))
	for i, p := range d.Params {
		raw := p.Default
		if i < len(rest) {
			raw = rest[i]
		}
		if raw == nil {
			return nil, 0, fmt.Errorf("%s: parameter %d (%s) missing: %w", name, i+1, p.Name, ErrBadParameter)
		}
		val, err := convert(p.Kind, raw)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: parameter %d (%s): %w", name, i+1, p.Name, err)
		}
		values[i] = val
	}
	return d.New(v, values), weight.(float64), nil
}

// Apply creates the named behavior and activates it on v.
func Apply(name string, v *Vehicle, args []any) (Behavior, error) {
	b, weight, err := Create(name, v, args)
	if err != nil {
		return nil, err
	}
	v.AddBehavior(b, weight)
	return b, nil
}

// convert coerces raw to the Go type used for kind.
func convert(kind Kind, raw any) (any, error) {
	switch kind {
	case Float:
		if f, ok := toFloat(raw); ok {
			return f, nil
		}
	case Int:
		switch x := raw.(type) {
		case int:
			return x, nil
		case int32:
			return int(x), nil
		case int64:
			return int(x), nil
		case float64:
			if x == math.Trunc(x) {
				return int(x), nil
			}
		}
	case String:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case Vec3:
		if v, ok := toVec(raw); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("want %s, got %T: %w", kind, raw, ErrBadParameter)
}

func toFloat(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func toVec(raw any) (r3.Vec, bool) {
	switch x := raw.(type) {
	case r3.Vec:
		return x, true
	case []float64:
		if len(x) == 3 {
			return r3.Vec{X: x[0], Y: x[1], Z: x[2]}, true
		}
	case []any:
		if len(x) != 3 {
			return r3.Vec{}, false
		}
		var c [3]float64
		for i, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return r3.Vec{}, false
			}
			c[i] = f
		}
		return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, true
	}
	return r3.Vec{}, false
}
