// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Sim        SimConfig        `yaml:"sim"`
	Population PopulationConfig `yaml:"population"`
	Flock      FlockConfig      `yaml:"flock"`
	Steering   SteeringConfig   `yaml:"steering"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds core simulation parameters.
type SimConfig struct {
	DT       float64 `yaml:"dt"`       // seconds per tick
	Seed     int64   `yaml:"seed"`     // RNG seed for spawning
	Duration float64 `yaml:"duration"` // simulation seconds to run (0 = until interrupted)
}

// PopulationConfig holds initial population parameters.
type PopulationConfig struct {
	Initial      int     `yaml:"initial"`       // boid count at start
	SpawnExtent  float64 `yaml:"spawn_extent"`  // boids spawn uniformly in +/- this per axis
	InitialSpeed float64 `yaml:"initial_speed"` // max initial speed per axis
}

// FlockConfig holds the crowd parameters.
type FlockConfig struct {
	SeparationRadius float64 `yaml:"separation_radius"`
	AlignmentRadius  float64 `yaml:"alignment_radius"`
	CohesionRadius   float64 `yaml:"cohesion_radius"`

	SeparationWeight float64 `yaml:"separation_weight"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`

	NeighborRadius float64 `yaml:"neighbor_radius"`
	MaxSpeed       float64 `yaml:"max_speed"`

	BoundaryExtent   float64 `yaml:"boundary_extent"` // box half-width per axis
	BoundaryMargin   float64 `yaml:"boundary_margin"`
	BoundaryStrength float64 `yaml:"boundary_strength"`
}

// SteeringConfig holds steering controller parameters.
type SteeringConfig struct {
	MaxSpeed float64 `yaml:"max_speed"`
	MaxForce float64 `yaml:"max_force"`

	WanderRadius   float64 `yaml:"wander_radius"`
	WanderDistance float64 `yaml:"wander_distance"`
	WanderJitter   float64 `yaml:"wander_jitter"`
}

// AnalysisConfig holds density analysis parameters.
type AnalysisConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	SnapshotInterval    float64 `yaml:"snapshot_interval"` // seconds between state snapshots (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TotalTicks     int64 // Sim.Duration in ticks (0 = unbounded)
	TicksPerWindow int64 // Telemetry.StatsWindow in ticks
	SnapshotTicks  int64 // Telemetry.SnapshotInterval in ticks (0 = off)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks parameter sanity before the config is used.
func (c *Config) Validate() error {
	if c.Sim.DT <= 0 {
		return fmt.Errorf("sim.dt must be positive, got %v", c.Sim.DT)
	}
	if c.Population.Initial < 0 {
		return fmt.Errorf("population.initial must be non-negative, got %d", c.Population.Initial)
	}
	if c.Flock.NeighborRadius <= 0 {
		return fmt.Errorf("flock.neighbor_radius must be positive, got %v", c.Flock.NeighborRadius)
	}
	if c.Flock.MaxSpeed <= 0 {
		return fmt.Errorf("flock.max_speed must be positive, got %v", c.Flock.MaxSpeed)
	}
	if c.Flock.BoundaryExtent <= c.Flock.BoundaryMargin {
		return fmt.Errorf("flock.boundary_extent %v must exceed flock.boundary_margin %v",
			c.Flock.BoundaryExtent, c.Flock.BoundaryMargin)
	}
	if c.Analysis.CellSize <= 0 {
		return fmt.Errorf("analysis.cell_size must be positive, got %v", c.Analysis.CellSize)
	}
	if c.Telemetry.StatsWindow <= 0 {
		return fmt.Errorf("telemetry.stats_window must be positive, got %v", c.Telemetry.StatsWindow)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Sim.Duration > 0 {
		c.Derived.TotalTicks = secondsToTicks(c.Sim.Duration, c.Sim.DT)
	}

	c.Derived.TicksPerWindow = secondsToTicks(c.Telemetry.StatsWindow, c.Sim.DT)

	if c.Telemetry.SnapshotInterval > 0 {
		c.Derived.SnapshotTicks = secondsToTicks(c.Telemetry.SnapshotInterval, c.Sim.DT)
	}
}

// secondsToTicks rounds to the nearest tick so near-integer ratios like
// 1.0 / (1/60) do not truncate, and clamps to at least one tick.
func secondsToTicks(seconds, dt float64) int64 {
	ticks := int64(seconds/dt + 0.5)
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
