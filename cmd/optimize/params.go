package main

import (
	"github.com/pthm-cable/flappy/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the evolution hyper-parameters searched by the tuner.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "elite_fraction", Path: "evolution.elite_fraction", Min: 0.05, Max: 0.8, Default: 0.4,
				get: func(c *config.Config) float64 { return c.Evolution.EliteFraction },
				set: func(c *config.Config, v float64) { c.Evolution.EliteFraction = v },
			},
			{
				Name: "survivor_fraction", Path: "evolution.survivor_fraction", Min: 0, Max: 0.5, Default: 0.2,
				get: func(c *config.Config) float64 { return c.Evolution.SurvivorFraction },
				set: func(c *config.Config, v float64) { c.Evolution.SurvivorFraction = v },
			},
			{
				Name: "weight_mutation_prob", Path: "evolution.weight_mutation_prob", Min: 0, Max: 0.6, Default: 0.2,
				get: func(c *config.Config) float64 { return c.Evolution.WeightMutationProb },
				set: func(c *config.Config, v float64) { c.Evolution.WeightMutationProb = v },
			},
			{
				Name: "crossover_mix", Path: "evolution.crossover_mix", Min: 0.1, Max: 0.9, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Evolution.CrossoverMix },
				set: func(c *config.Config, v float64) { c.Evolution.CrossoverMix = v },
			},
			{
				Name: "offspring_mutation_prob", Path: "evolution.offspring_mutation_prob", Min: 0, Max: 1, Default: 0.4,
				get: func(c *config.Config) float64 { return c.Evolution.OffspringMutationProb },
				set: func(c *config.Config, v float64) { c.Evolution.OffspringMutationProb = v },
			},
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

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
