package steering

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

// neighbourhood selects the vehicles around v that carry a tag.
type neighbourhood struct {
	Range float64
	Key   string
	Value string
}

// each calls fn for every other vehicle within Range on each axis that
// matches the tag filter.
func (n neighbourhood) each(v *Vehicle, fn func(*Vehicle)) {
	if v.env == nil || n.Range <= 0 {
		return
	}
	for e := range v.env.Query(geom.NewCube(v.Pos, n.Range)) {
		other, ok := e.(*Vehicle)
		if !ok || other == v || !other.MatchesTag(n.Key, n.Value) {
			continue
		}
		fn(other)
	}
}

// Separation pushes away from nearby tagged vehicles, harder the closer they
// are.
type Separation struct {
	v *Vehicle
	neighbourhood
}

// NewSeparation creates a Separation behavior.
func NewSeparation(v *Vehicle, rng float64, key, value string) *Separation {
	return &Separation{v: v, neighbourhood: neighbourhood{Range: rng, Key: key, Value: value}}
}

func (b *Separation) Calculate(float64) r3.Vec {
	var force r3.Vec
	b.each(b.v, func(other *Vehicle) {
		away := r3.Sub(b.v.Pos, other.Pos)
		dist := r3.Norm(away)
		if dist < 1e-9 {
			return
		}
		force = r3.Add(force, r3.Scale(1/(dist*dist), away))
	})
	return force
}

// Cohesion steers towards the centre of nearby tagged vehicles.
type Cohesion struct {
	v *Vehicle
	neighbourhood
}

// NewCohesion creates a Cohesion behavior.
func NewCohesion(v *Vehicle, rng float64, key, value string) *Cohesion {
	return &Cohesion{v: v, neighbourhood: neighbourhood{Range: rng, Key: key, Value: value}}
}

func (b *Cohesion) Calculate(float64) r3.Vec {
	var centre r3.Vec
	count := 0
	b.each(b.v, func(other *Vehicle) {
		centre = r3.Add(centre, other.Pos)
		count++
	})
	if count == 0 {
		return r3.Vec{}
	}
	return SeekForce(b.v, r3.Scale(1/float64(count), centre))
}

// Alignment matches the average heading of nearby tagged vehicles.
type Alignment struct {
	v *Vehicle
	neighbourhood
}

// NewAlignment creates an Alignment behavior.
func NewAlignment(v *Vehicle, rng float64, key, value string) *Alignment {
	return &Alignment{v: v, neighbourhood: neighbourhood{Range: rng, Key: key, Value: value}}
}

func (b *Alignment) Calculate(float64) r3.Vec {
	var heading r3.Vec
	count := 0
	b.each(b.v, func(other *Vehicle) {
		heading = r3.Add(heading, other.Heading)
		count++
	})
	if count == 0 {
		return r3.Vec{}
	}
	return r3.Sub(r3.Scale(1/float64(count), heading), b.v.Heading)
}
