// Package config holds all tunable planning parameters. Every solver weight
// is a named field so quality/feasibility trade-offs are visible in one place
// rather than buried as magic numbers.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Travel covers the cost model and scenario geometry.
type Travel struct {
	BaseSpeedKMH     float64 `yaml:"base_speed_kmh"`
	ClosureFraction  float64 `yaml:"closure_fraction"`
	ForbiddenMinutes float64 `yaml:"forbidden_minutes"`
}

// Greedy covers the baseline constructive router.
type Greedy struct {
	// TravelBeta trades pit priority against detour minutes in the
	// selection score priority - beta*travel.
	TravelBeta float64 `yaml:"travel_beta"`
}

// Anneal covers the QUBO objective and the sampling budget.
type Anneal struct {
	WeightPriority float64 `yaml:"weight_priority"`
	WeightOnce     float64 `yaml:"weight_once"`
	WeightCapacity float64 `yaml:"weight_capacity"`
	WeightTravel   float64 `yaml:"weight_travel"`
	WeightLateness float64 `yaml:"weight_lateness"`
	TopN           int     `yaml:"top_n"`
	MaxTrucks      int     `yaml:"max_trucks"`
	Reads          int     `yaml:"reads"`
	Sweeps         int     `yaml:"sweeps"`
}

// Penalties covers lateness and unserved scoring in the metrics engine.
type Penalties struct {
	PerMinHigh     float64 `yaml:"per_min_high"`
	PerMinMedium   float64 `yaml:"per_min_medium"`
	PerMinLow      float64 `yaml:"per_min_low"`
	UnservedHigh   float64 `yaml:"unserved_high"`
	UnservedMedium float64 `yaml:"unserved_medium"`
	UnservedLow    float64 `yaml:"unserved_low"`
}

// Emissions covers the fixed linear fuel/CO2 factors.
type Emissions struct {
	FuelLPerKM float64 `yaml:"fuel_l_per_km"`
	CO2KgPerL  float64 `yaml:"co2_kg_per_l"`
}

// Scenario covers the synthetic snapshot generator.
type Scenario struct {
	Pits              int     `yaml:"pits"`
	Trucks            int     `yaml:"trucks"`
	ShiftMinutes      float64 `yaml:"shift_minutes"`
	SafetyMarginMin   float64 `yaml:"safety_margin_min"`
	LatMin            float64 `yaml:"lat_min"`
	LatMax            float64 `yaml:"lat_max"`
	LonMin            float64 `yaml:"lon_min"`
	LonMax            float64 `yaml:"lon_max"`
	DefaultSeed       int64   `yaml:"default_seed"`
}

type Config struct {
	Travel    Travel    `yaml:"travel"`
	Greedy    Greedy    `yaml:"greedy"`
	Anneal    Anneal    `yaml:"anneal"`
	Penalties Penalties `yaml:"penalties"`
	Emissions Emissions `yaml:"emissions"`
	Scenario  Scenario  `yaml:"scenario"`
}

// Default returns the planning parameters used in production. Values come
// from the tuned Hebron deployment.
func Default() Config {
	return Config{
		Travel: Travel{
			BaseSpeedKMH:     25.0,
			ClosureFraction:  0.03,
			ForbiddenMinutes: 1e6,
		},
		Greedy: Greedy{TravelBeta: 0.015},
		Anneal: Anneal{
			WeightPriority: 60.0,
			WeightOnce:     250.0,
			WeightCapacity: 6.0,
			WeightTravel:   1.0,
			WeightLateness: 2.0,
			TopN:           10,
			MaxTrucks:      2,
			Reads:          3000,
			Sweeps:         200,
		},
		Penalties: Penalties{
			PerMinHigh:     80,
			PerMinMedium:   25,
			PerMinLow:      8,
			UnservedHigh:   6000,
			UnservedMedium: 1500,
			UnservedLow:    300,
		},
		Emissions: Emissions{FuelLPerKM: 0.35, CO2KgPerL: 2.68},
		Scenario: Scenario{
			Pits:            30,
			Trucks:          4,
			ShiftMinutes:    480,
			SafetyMarginMin: 90,
			LatMin:          31.505,
			LatMax:          31.555,
			LonMin:          35.070,
			LonMax:          35.120,
			DefaultSeed:     7,
		},
	}
}

// Load reads a YAML overlay over the defaults. An empty path returns the
// defaults; a missing file is an error so misconfigured deployments fail at
// startup instead of silently planning with stale weights.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by PITROUTE_CONFIG, if any.
func FromEnv() (Config, error) {
	return Load(os.Getenv("PITROUTE_CONFIG"))
}
