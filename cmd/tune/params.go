package main

import (
	"fmt"

	"github.com/ikkentim/AIWorld-sub000/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
	Group string // Group whose flocking weights are tuned
}

// NewParamVector creates the standard set of tunable parameters for a flocking group.
func NewParamVector(group string) *ParamVector {
	return &ParamVector{
		Group: group,
		Specs: []ParamSpec{
			// Flocking weights, applied to the group's behavior args
			{Name: "separation_weight", Path: "groups.separation[0]", Min: 0.5, Max: 8.0, Default: 4.0},
			{Name: "separation_range", Path: "groups.separation[1]", Min: 1.0, Max: 10.0, Default: 4.0},
			{Name: "cohesion_weight", Path: "groups.cohesion[0]", Min: 0.1, Max: 4.0, Default: 1.0},
			{Name: "alignment_weight", Path: "groups.alignment[0]", Min: 0.1, Max: 4.0, Default: 1.0},
			// Shared steering tunables
			{Name: "deceleration_tweaker", Path: "steering.deceleration_tweaker", Min: 0.1, Max: 1.0, Default: 0.3},
			{Name: "braking_weight", Path: "steering.braking_weight", Min: 0.05, Max: 1.0, Default: 0.2},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg. The tuned group must
// exist; behaviors it does not carry are left alone.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	sepWeight, sepRange := clamped[0], clamped[1]
	cohWeight, aliWeight := clamped[2], clamped[3]

	found := false
	for gi := range cfg.Groups {
		g := &cfg.Groups[gi]
		if g.Name != pv.Group {
			continue
		}
		found = true
		for bi := range g.Behaviors {
			b := &g.Behaviors[bi]
			if len(b.Args) == 0 {
				continue
			}
			switch b.Name {
			case "separation":
				b.Args[0] = sepWeight
				if len(b.Args) > 1 {
					b.Args[1] = sepRange
				}
			case "cohesion":
				b.Args[0] = cohWeight
			case "alignment":
				b.Args[0] = aliWeight
			}
		}
	}
	if !found {
		return fmt.Errorf("group %q not in config", pv.Group)
	}

	cfg.Steering.DecelerationTweaker = clamped[4]
	cfg.Steering.BrakingWeight = clamped[5]
	return nil
}

// Record is one row of the tuning log.
type Record struct {
	Eval                int     `csv:"eval"`
	Fitness             float64 `csv:"fitness"`
	SeparationWeight    float64 `csv:"separation_weight"`
	SeparationRange     float64 `csv:"separation_range"`
	CohesionWeight      float64 `csv:"cohesion_weight"`
	AlignmentWeight     float64 `csv:"alignment_weight"`
	DecelerationTweaker float64 `csv:"deceleration_tweaker"`
	BrakingWeight       float64 `csv:"braking_weight"`
}

// NewRecord builds a log row from clamped parameter values.
func NewRecord(eval int, fitness float64, clamped []float64) Record {
	return Record{
		Eval:                eval,
		Fitness:             fitness,
		SeparationWeight:    clamped[0],
		SeparationRange:     clamped[1],
		CohesionWeight:      clamped[2],
		AlignmentWeight:     clamped[3],
		DecelerationTweaker: clamped[4],
		BrakingWeight:       clamped[5],
	}
}
