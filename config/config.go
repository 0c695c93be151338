// Package config provides configuration loading and access for the demo and
// tooling built around the steering engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all runtime configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Simulation SimulationConfig `yaml:"simulation"`
	Vehicle    VehicleConfig    `yaml:"vehicle"`
	Steering   SteeringConfig   `yaml:"steering"`
	Agents     AgentsConfig     `yaml:"agents"`
	Drift      DriftConfig      `yaml:"drift"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Record     RecordConfig     `yaml:"record"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the bounded region the spatial partition covers and its
// grid resolution.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
	CellsX int     `yaml:"cells_x"`
	CellsY int     `yaml:"cells_y"`
	CellsZ int     `yaml:"cells_z"`
}

// SimulationConfig holds stepping parameters.
type SimulationConfig struct {
	DT             float64 `yaml:"dt"`               // Fixed step in seconds (0 = derive from target FPS)
	StepsPerUpdate int     `yaml:"steps_per_update"` // Sim steps per rendered frame
	Seed           int64   `yaml:"seed"`
}

// VehicleConfig holds the kinematic limits agents are created with.
type VehicleConfig struct {
	MaxSpeed           float64 `yaml:"max_speed"`
	MaxForce           float64 `yaml:"max_force"`
	Mass               float64 `yaml:"mass"`
	NeighborhoodRadius float64 `yaml:"neighborhood_radius"`
	SmootherSamples    int     `yaml:"smoother_samples"` // 0 disables orientation smoothing
}

// SteeringConfig holds per-behavior parameters and weights.
type SteeringConfig struct {
	Seek    SeekConfig    `yaml:"seek"`
	Flee    FleeConfig    `yaml:"flee"`
	Arrive  ArriveConfig  `yaml:"arrive"`
	Pursuit PursuitConfig `yaml:"pursuit"`
	Wander  WanderConfig  `yaml:"wander"`
}

// SeekConfig holds seek parameters.
type SeekConfig struct {
	Weight float64 `yaml:"weight"`
}

// FleeConfig holds flee parameters.
type FleeConfig struct {
	PanicDistance float64 `yaml:"panic_distance"`
	Weight        float64 `yaml:"weight"`
}

// ArriveConfig holds arrive parameters.
type ArriveConfig struct {
	Deceleration float64 `yaml:"deceleration"`
	Tolerance    float64 `yaml:"tolerance"`
	Weight       float64 `yaml:"weight"`
}

// PursuitConfig holds pursuit parameters.
type PursuitConfig struct {
	PredictionFactor float64 `yaml:"prediction_factor"`
	Weight           float64 `yaml:"weight"`
}

// WanderConfig holds wander parameters.
type WanderConfig struct {
	Radius   float64 `yaml:"radius"`
	Distance float64 `yaml:"distance"`
	Jitter   float64 `yaml:"jitter"`
	Weight   float64 `yaml:"weight"`
}

// AgentsConfig holds the demo population mix.
type AgentsConfig struct {
	Wanderers      int     `yaml:"wanderers"`
	Pursuers       int     `yaml:"pursuers"`
	HuntRange      float64 `yaml:"hunt_range"`      // Pursuers switch from roam to hunt inside this range
	CaptureRadius  float64 `yaml:"capture_radius"`  // A pursuer this close to its quarry tags it
	SpeedAdvantage float64 `yaml:"speed_advantage"` // Pursuer max speed multiplier over the base
}

// DriftConfig holds the environmental current applied by the demo mover.
type DriftConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Scale     float64 `yaml:"scale"`      // Noise frequency over world units
	Strength  float64 `yaml:"strength"`   // Current magnitude in units/sec
	TimeScale float64 `yaml:"time_scale"` // Speed of field animation (0 = static)
}

// TelemetryConfig holds fleet statistics parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of samples per stats row
	PerfWindow  int     `yaml:"perf_window"`  // Frames in the rolling perf window
	LogInterval float64 `yaml:"log_interval"` // Seconds between stats log lines
}

// RecordConfig holds session recorder settings.
type RecordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	FlushEvery int    `yaml:"flush_every"` // Frames buffered per batch insert
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HalfWidth  float64 // World.Width / 2
	HalfHeight float64 // World.Height / 2
	HalfDepth  float64 // World.Depth / 2
	CellCount  int     // CellsX * CellsY * CellsZ
	Agents     int     // Total demo population
	ScreenW32  float32 // Screen.Width as float32
	ScreenH32  float32 // Screen.Height as float32
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

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Simulation.StepsPerUpdate <= 0 {
		c.Simulation.StepsPerUpdate = 1
	}
	if c.Vehicle.SmootherSamples < 0 {
		c.Vehicle.SmootherSamples = 0
	}
	if c.Record.FlushEvery <= 0 {
		c.Record.FlushEvery = 60
	}

	c.Derived.HalfWidth = c.World.Width / 2
	c.Derived.HalfHeight = c.World.Height / 2
	c.Derived.HalfDepth = c.World.Depth / 2
	c.Derived.CellCount = c.World.CellsX * c.World.CellsY * c.World.CellsZ
	c.Derived.Agents = c.Agents.Wanderers + c.Agents.Pursuers
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
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
