// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Climate    ClimateConfig    `yaml:"climate"`
	Tiles      TilesConfig      `yaml:"tiles"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Creature   CreatureConfig   `yaml:"creature"`
	Rock       RockConfig       `yaml:"rock"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Saves      SavesConfig      `yaml:"saves"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Server     ServerConfig     `yaml:"server"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds board dimensions and terrain generation settings.
type WorldConfig struct {
	Width     int     `yaml:"width"`      // tiles along x
	Height    int     `yaml:"height"`     // tiles along y
	NoiseStep float64 `yaml:"noise_step"` // noise sampling step per tile
	Noise     string  `yaml:"noise"`      // "perlin" or "simplex"
	Rocks     int     `yaml:"rocks"`      // inert bodies created at startup
}

// ClimateConfig holds the seasonal temperature model.
type ClimateConfig struct {
	MinTemperature float64 `yaml:"min_temperature"`
	MaxTemperature float64 `yaml:"max_temperature"`
	ThermometerMin float64 `yaml:"thermometer_min"` // lower clamp for temperature setters
	ThermometerMax float64 `yaml:"thermometer_max"` // upper clamp for temperature setters
}

// TilesConfig holds food growth parameters.
type TilesConfig struct {
	MaxGrowthLevel float64 `yaml:"max_growth_level"` // food cap approached during growth
	FoodGrowthRate float64 `yaml:"food_growth_rate"`
	RectifyEpsilon float64 `yaml:"rectify_epsilon"` // skip rectification closer than this (years)
}

// PhysicsConfig holds soft-body physics tunables.
type PhysicsConfig struct {
	CollisionForce   float64 `yaml:"collision_force"`
	Friction         float64 `yaml:"friction"`
	FightRange       float64 `yaml:"fight_range"` // bounding box radius multiplier
	MinMass          float64 `yaml:"min_mass"`    // divisor floor for near-zero energy bodies
	TimestepsPerYear float64 `yaml:"timesteps_per_year"`
}

// PopulationConfig holds population stabilization and history settings.
type PopulationConfig struct {
	Minimum          int     `yaml:"minimum"`
	MinimumIncrement int     `yaml:"minimum_increment"`
	StabilizeMode    string  `yaml:"stabilize_mode"` // "spawn" or "reproduce"
	HistoryLength    int     `yaml:"history_length"`
	RecordEvery      float64 `yaml:"record_every"` // years between history samples
}

// CreatureConfig holds default creature behavior parameters.
type CreatureConfig struct {
	MinEnergy              float64 `yaml:"min_energy"` // fresh spawn energy range
	MaxEnergy              float64 `yaml:"max_energy"`
	Density                float64 `yaml:"density"`
	SafeSize               float64 `yaml:"safe_size"`         // energy needed to reproduce
	ManualBirthSize        float64 `yaml:"manual_birth_size"` // child energy for commanded births
	MatureAge              float64 `yaml:"mature_age"`        // years
	MetabolismEnergy       float64 `yaml:"metabolism_energy"`
	AccelerationEnergy     float64 `yaml:"acceleration_energy"`
	AccelerationBackEnergy float64 `yaml:"acceleration_back_energy"`
	TurnEnergy             float64 `yaml:"turn_energy"`
	EatEnergy              float64 `yaml:"eat_energy"`
	EatSpeed               float64 `yaml:"eat_speed"`
	FoodSensitivity        float64 `yaml:"food_sensitivity"`
	FightEnergy            float64 `yaml:"fight_energy"`
	InjuredEnergy          float64 `yaml:"injured_energy"`
	HueJitter              float64 `yaml:"hue_jitter"` // child hue deviation
}

// RockConfig holds inert body parameters.
type RockConfig struct {
	MinEnergyBase float64 `yaml:"min_energy_base"` // energy = random(min, max)^4
	MaxEnergyBase float64 `yaml:"max_energy_base"`
	Density       float64 `yaml:"density"`
}

// MutationConfig holds starting values for fresh brains.
type MutationConfig struct {
	StartVariability float64 `yaml:"start_variability"` // initial weight range
	StartMutability  float64 `yaml:"start_mutability"`
}

// SavesConfig holds export scheduling intervals (years).
type SavesConfig struct {
	ImageInterval float64 `yaml:"image_interval"`
	TextInterval  float64 `yaml:"text_interval"`
}

// SimulationConfig holds runner settings.
type SimulationConfig struct {
	TimeStep       float64 `yaml:"time_step"`        // years per tick
	StepsPerUpdate int     `yaml:"steps_per_update"` // ticks per runner iteration
	TicksPerSecond float64 `yaml:"ticks_per_second"` // 0 = unpaced
	PublishEvery   int     `yaml:"publish_every"`    // ticks between view publications
}

// TelemetryConfig holds telemetry and logging parameters.
type TelemetryConfig struct {
	StatsWindow       float64 `yaml:"stats_window"` // years per stats window
	PerfWindow        int     `yaml:"perf_window"`  // ticks averaged by the perf collector
	BookmarkHistory   int     `yaml:"bookmark_history"`
	CrashThreshold    float64 `yaml:"crash_threshold"` // fraction of recent peak
	BoomThreshold     float64 `yaml:"boom_threshold"`  // multiple of recent minimum
	StableWindows     int     `yaml:"stable_windows"`
	StableCV          float64 `yaml:"stable_cv"`
	CompressSnapshots bool    `yaml:"compress_snapshots"`
}

// ServerConfig holds HTTP inspection server settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`       // empty = disabled
	DebugAddr      string   `yaml:"debug_addr"` // metrics listener, empty = disabled
	AllowedOrigins []string `yaml:"allowed_origins"`
	CommandRate    float64  `yaml:"command_rate"` // commands per second
	CommandBurst   int      `yaml:"command_burst"`
	CommandQueue   int      `yaml:"command_queue"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	EnergyDensity    float64 // energy per unit area
	StepsPerYear     float64 // ticks needed to advance one year
	HistorySpanYears float64 // years covered by the population history
}

// MinimumSurvivableSize is the body radius that holds exactly one unit of energy.
const MinimumSurvivableSize = 0.06

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
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
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

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	return &clone
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.EnergyDensity = 1.0 / (MinimumSurvivableSize * MinimumSurvivableSize * math.Pi)
	if c.Simulation.TimeStep > 0 {
		c.Derived.StepsPerYear = 1.0 / c.Simulation.TimeStep
	}
	c.Derived.HistorySpanYears = float64(c.Population.HistoryLength) * c.Population.RecordEvery
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
