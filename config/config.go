// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Sim       SimConfig        `yaml:"sim"`
	Vehicle   VehicleConfig    `yaml:"vehicle"`
	Steering  SteeringConfig   `yaml:"steering"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
	Roads     []RoadConfig     `yaml:"roads"`
	Obstacles []ObstacleConfig `yaml:"obstacles"`
	Groups    []GroupConfig    `yaml:"groups"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds tick timing.
type SimConfig struct {
	DT       float64 `yaml:"dt"`        // Seconds per tick
	Seed     int64   `yaml:"seed"`      // 0 = time based
	MaxTicks int     `yaml:"max_ticks"` // 0 = unlimited
}

// VehicleConfig holds defaults for spawned vehicles.
type VehicleConfig struct {
	Mass     float64 `yaml:"mass"`
	MaxSpeed float64 `yaml:"max_speed"`
	MaxForce float64 `yaml:"max_force"`
	Radius   float64 `yaml:"radius"`
}

// SteeringConfig holds behavior tunables.
type SteeringConfig struct {
	DecelerationTweaker   float64 `yaml:"deceleration_tweaker"`
	BrakingWeight         float64 `yaml:"braking_weight"`
	MinDetectionBoxLength float64 `yaml:"min_detection_box_length"`
	ObstacleMargin        float64 `yaml:"obstacle_margin"`
	WanderRadius          float64 `yaml:"wander_radius"`
	WanderDistance        float64 `yaml:"wander_distance"`
	WanderJitter          float64 `yaml:"wander_jitter"`     // Per second
	HeadOnThreshold       float64 `yaml:"head_on_threshold"` // Cosine of relative heading
	WaypointDistance      float64 `yaml:"waypoint_distance"`
}

// TelemetryConfig holds stats collection settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of simulation per window
	PerfWindow  int     `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// Vec3 is a point written as a three element YAML sequence.
type Vec3 []float64

// Vec converts to r3.Vec. Call only after validation.
func (v Vec3) Vec() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// RoadConfig is a polyline of waypoints.
type RoadConfig struct {
	Points []Vec3 `yaml:"points"`
	TwoWay bool   `yaml:"two_way"`
}

// ObstacleConfig is a static spherical obstacle.
type ObstacleConfig struct {
	Center Vec3    `yaml:"center"`
	Radius float64 `yaml:"radius"`
}

// BehaviorConfig activates a steering behavior. Args start with the weight.
type BehaviorConfig struct {
	Name string `yaml:"name"`
	Args []any  `yaml:"args"`
}

// GroupConfig spawns Count vehicles uniformly inside a box.
type GroupConfig struct {
	Name        string            `yaml:"name"`
	Count       int               `yaml:"count"`
	SpawnCenter Vec3              `yaml:"spawn_center"`
	SpawnHalf   Vec3              `yaml:"spawn_half"`
	MaxSpeed    float64           `yaml:"max_speed"` // 0 = vehicle default
	Roaming     bool              `yaml:"roaming"`   // Drive between random road nodes
	Tags        map[string]string `yaml:"tags"`
	Behaviors   []BehaviorConfig  `yaml:"behaviors"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	TicksPerWindow int
	TotalAgents    int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse merges a YAML document over the embedded defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		// Unmarshal into same struct - only overwrites fields present in data
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sim.DT <= 0 {
		return fmt.Errorf("sim.dt must be positive: %w", ErrInvalid)
	}
	for i, r := range c.Roads {
		for j, p := range r.Points {
			if len(p) != 3 {
				return fmt.Errorf("roads[%d].points[%d] has %d components: %w", i, j, len(p), ErrInvalid)
			}
		}
	}
	for i, o := range c.Obstacles {
		if len(o.Center) != 3 {
			return fmt.Errorf("obstacles[%d].center has %d components: %w", i, len(o.Center), ErrInvalid)
		}
		if o.Radius <= 0 {
			return fmt.Errorf("obstacles[%d].radius must be positive: %w", i, ErrInvalid)
		}
	}
	for i, g := range c.Groups {
		if len(g.SpawnCenter) != 3 || len(g.SpawnHalf) != 3 {
			return fmt.Errorf("groups[%d] (%s) spawn box needs three components: %w", i, g.Name, ErrInvalid)
		}
		if g.Count < 0 {
			return fmt.Errorf("groups[%d] (%s) count is negative: %w", i, g.Name, ErrInvalid)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TicksPerWindow = int(c.Telemetry.StatsWindow / c.Sim.DT)
	if c.Derived.TicksPerWindow < 1 {
		c.Derived.TicksPerWindow = 1
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}

	c.Derived.TotalAgents = 0
	for _, g := range c.Groups {
		c.Derived.TotalAgents += g.Count
	}
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

// Clone returns a deep copy by round tripping through YAML.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return Parse(data)
}
