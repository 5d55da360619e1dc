// Package main provides CMA-ES optimization for flocking parameters.
package main

import (
	"github.com/pthm-cable/kinetic/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Behavior weights
			{Name: "separation_weight", Path: "flock.separation_weight", Min: 0.1, Max: 5.0, Default: 1.5},
			{Name: "alignment_weight", Path: "flock.alignment_weight", Min: 0.1, Max: 5.0, Default: 1.0},
			{Name: "cohesion_weight", Path: "flock.cohesion_weight", Min: 0.1, Max: 5.0, Default: 1.0},
			// Behavior radii (neighbor_radius locked at 10)
			{Name: "separation_radius", Path: "flock.separation_radius", Min: 0.5, Max: 6.0, Default: 2.0},
			{Name: "alignment_radius", Path: "flock.alignment_radius", Min: 1.0, Max: 10.0, Default: 4.0},
			{Name: "cohesion_radius", Path: "flock.cohesion_radius", Min: 1.0, Max: 10.0, Default: 6.0},
			// Boundary steering
			{Name: "boundary_strength", Path: "flock.boundary_strength", Min: 5.0, Max: 60.0, Default: 20.0},
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
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0

	cfg.Flock.SeparationWeight = clamped[i]
	i++
	cfg.Flock.AlignmentWeight = clamped[i]
	i++
	cfg.Flock.CohesionWeight = clamped[i]
	i++

	cfg.Flock.SeparationRadius = clamped[i]
	i++
	cfg.Flock.AlignmentRadius = clamped[i]
	i++
	cfg.Flock.CohesionRadius = clamped[i]
	i++

	cfg.Flock.BoundaryStrength = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Flock.SeparationWeight,
		cfg.Flock.AlignmentWeight,
		cfg.Flock.CohesionWeight,
		cfg.Flock.SeparationRadius,
		cfg.Flock.AlignmentRadius,
		cfg.Flock.CohesionRadius,
		cfg.Flock.BoundaryStrength,
	}
}
