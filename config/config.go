// Package config provides configuration loading and access for the
// simulation core: tick budgets, species-scoped behavior tunables, and
// subsystem thresholds.
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
	Debug      bool                    `yaml:"debug"`
	Scheduler  SchedulerConfig         `yaml:"scheduler"`
	Spatial    SpatialConfig           `yaml:"spatial"`
	Pathing    PathingConfig           `yaml:"pathing"`
	PathQueue  PathQueueConfig         `yaml:"path_queue"`
	Think      ThinkConfig             `yaml:"think"`
	Vegetation VegetationConfig        `yaml:"vegetation"`
	Fear       FearConfig              `yaml:"fear"`
	Groups     GroupsConfig            `yaml:"groups"`
	Health     HealthConfig            `yaml:"health"`
	Telemetry  TelemetryConfig         `yaml:"telemetry"`
	Species    map[string]SpeciesConfig `yaml:"species"`

	Derived DerivedConfig `yaml:"-"`
}

// SchedulerConfig controls the tick scheduler (spec.md §4.1, §9).
type SchedulerConfig struct {
	TickHz            float64 `yaml:"tick_hz"`
	MetricsRingSize   int     `yaml:"metrics_ring_size"`
	PerfSampleSeconds float64 `yaml:"perf_sample_seconds"`
}

// SpatialConfig controls spatial index maintenance (spec.md §4.2).
type SpatialConfig struct {
	ChunkSize        int `yaml:"chunk_size"`
	ReparentBudget   int `yaml:"reparent_budget"`
	RemovalBudget    int `yaml:"removal_budget"`
	RemovalInterval  int `yaml:"removal_interval"`
}

// PathingConfig controls A* search (spec.md §4.3).
type PathingConfig struct {
	StepLimit      int `yaml:"step_limit"`
	CacheCapacity  int `yaml:"cache_capacity"`
	CacheTTLTicks  int `yaml:"cache_ttl_ticks"`
	Connectivity8  bool `yaml:"connectivity_8"`
}

// PathQueueConfig controls the pathfinding queue (spec.md §4.4).
type PathQueueConfig struct {
	Budget       int `yaml:"budget"`
	ResultMaxAge int `yaml:"result_max_age_ticks"`
	LogInterval  int `yaml:"log_interval_ticks"`
}

// ThinkConfig controls the think queue/planner (spec.md §4.6).
type ThinkConfig struct {
	Budget          int     `yaml:"budget"`
	IdleTicks       int     `yaml:"idle_ticks"`
	IdleCheckPeriod int     `yaml:"idle_check_period"`
	HungerCritical  float32 `yaml:"hunger_critical"`
	HungerModerate  float32 `yaml:"hunger_moderate"`
	ThirstCritical  float32 `yaml:"thirst_critical"`
	ThirstModerate  float32 `yaml:"thirst_moderate"`
	EnergyCritical  float32 `yaml:"energy_critical"`
	EnergyLow       float32 `yaml:"energy_low"`
	FleeBaseUtility float32 `yaml:"flee_base_utility"`
	MaxActionRetries int    `yaml:"max_action_retries"`
}

// VegetationConfig controls the resource grid (spec.md §4.8).
type VegetationConfig struct {
	Capacity           float32 `yaml:"capacity"`
	DepletionThreshold float32 `yaml:"depletion_threshold"`
	RegrowthIncrement  float32 `yaml:"regrowth_increment"`
	RegrowthDelayTicks int     `yaml:"regrowth_delay_ticks"`
	BudgetMicros       int64   `yaml:"budget_micros"`
}

// FearConfig controls fear/flee (spec.md §4.10).
type FearConfig struct {
	DetectionRadius  int     `yaml:"detection_radius"`
	FleeThreshold    float32 `yaml:"flee_threshold"`
	StimulusPerPred  float32 `yaml:"stimulus_per_predator"`
	DecayPerTick     float32 `yaml:"decay_per_tick"`
	FleeTargetRadius int     `yaml:"flee_target_radius"`
}

// GroupsConfig controls group formation/cohesion (spec.md §4.9).
type GroupsConfig struct {
	CheckIntervalTicks    int `yaml:"check_interval_ticks"`
	ReformationCooldown   int `yaml:"reformation_cooldown_ticks"`
}

// HealthConfig controls the health checker (spec.md §4.11).
type HealthConfig struct {
	CheckInterval       int `yaml:"check_interval_ticks"`
	AlertBufferCapacity int `yaml:"alert_buffer_capacity"`
	StuckTicks          int `yaml:"stuck_ticks"`
	PopulationCrashPct  float64 `yaml:"population_crash_pct"`
	PopulationCrashTicks int    `yaml:"population_crash_ticks"`
	AiLoopRepeats       int `yaml:"ai_loop_repeats"`
}

// TelemetryConfig controls windowed stats export.
type TelemetryConfig struct {
	WindowTicks int `yaml:"window_ticks"`
}

// SpeciesConfig holds per-species tunables (spec.md §3 Behavior config).
type SpeciesConfig struct {
	Class              string  `yaml:"class"`
	HungerDrift        float32 `yaml:"hunger_drift"`
	ThirstDrift        float32 `yaml:"thirst_drift"`
	EnergyDrift        float32 `yaml:"energy_drift"`
	HealthDrift        float32 `yaml:"health_drift"`
	MovementSpeed      int     `yaml:"movement_speed_ticks_per_tile"`
	WanderRadius       int     `yaml:"wander_radius"`
	GrazeAmount        float32 `yaml:"graze_amount"`
	GrazeDuration      int     `yaml:"graze_duration_ticks"`
	DrinkAmount        float32 `yaml:"drink_amount"`
	DrinkDuration      int     `yaml:"drink_duration_ticks"`
	RestRate           float32 `yaml:"rest_energy_per_tick"`
	HuntDamage         float32 `yaml:"hunt_damage"`
	HuntStrikeRange    int     `yaml:"hunt_strike_range"`
	HuntReplanThreshold int    `yaml:"hunt_replan_threshold"`
	FleeSpeedBoost     int     `yaml:"flee_speed_boost_ticks_per_tile"`
	MateDeadlineTicks  int     `yaml:"mate_deadline_ticks"`
	Group              GroupFormationConfig `yaml:"group"`
}

// GroupFormationConfig is the species-scoped group config (spec.md §3, §4.9).
type GroupFormationConfig struct {
	Enabled                bool    `yaml:"enabled"`
	GroupType              string  `yaml:"group_type"`
	MinSize                int     `yaml:"min_size"`
	MaxSize                int     `yaml:"max_size"`
	FormationRadius        int     `yaml:"formation_radius"`
	CohesionRadius         int     `yaml:"cohesion_radius"`
	HuntBonus              float32 `yaml:"hunt_bonus"`
	GrazeRestBonus         float32 `yaml:"graze_rest_bonus"`
	FleeBonus              float32 `yaml:"flee_bonus"`
}

// DerivedConfig holds values computed after loading.
type DerivedConfig struct {
	TickInterval float64 // seconds per tick, derived from TickHz
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
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
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// WriteYAML serializes the config to a file for experiment reproducibility.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) computeDerived() {
	if c.Scheduler.TickHz <= 0 {
		c.Scheduler.TickHz = 10
	}
	c.Derived.TickInterval = 1.0 / c.Scheduler.TickHz
}

// ForSpecies returns the species config, falling back to a zero-value
// config (all tunables at their Go zero value) if the species is unknown.
func (c *Config) ForSpecies(name string) SpeciesConfig {
	if sc, ok := c.Species[name]; ok {
		return sc
	}
	return SpeciesConfig{}
}
