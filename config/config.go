// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// SensorCount is the number of sensor values a bird feeds its network.
const SensorCount = 2

// Config holds all simulation configuration parameters.
// A loaded Config is treated as immutable; packages receive it by value
// or hold a pointer to their own copy.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Bird      BirdConfig      `yaml:"bird"`
	Pipes     PipesConfig     `yaml:"pipes"`
	Neural    NeuralConfig    `yaml:"neural"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Run       RunConfig       `yaml:"run"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. The playfield is the screen.
type ScreenConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	FPS    int     `yaml:"fps"`
}

// BirdConfig holds bird body and physics parameters.
// Times are in milliseconds, distances in pixels.
type BirdConfig struct {
	StartX    float64 `yaml:"start_x"` // Horizontal center, fixed for the whole run
	StartY    float64 `yaml:"start_y"` // Vertical center after reset
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Gravity   float64 `yaml:"gravity"`    // px/ms²
	JumpSpeed float64 `yaml:"jump_speed"` // px/ms, negative is up
}

// PipesConfig holds obstacle course geometry.
type PipesConfig struct {
	Speed   float64 `yaml:"speed"`    // px/ms
	GapSize float64 `yaml:"gap_size"` // Opening between the two pipes of a pair
	Min     float64 `yaml:"min"`      // Highest the gap may start, measured from the top
	Max     float64 `yaml:"max"`      // Lowest the gap may end, measured from the top
	Width   float64 `yaml:"width"`
	StartX  float64 `yaml:"start_x"` // Left edge of newly spawned pairs
	FirstX  float64 `yaml:"first_x"` // Left edge of the first pair of a generation
	AddGap  float64 `yaml:"add_gap"` // Horizontal distance between consecutive pairs
}

// NeuralConfig holds network topology and decision parameters.
type NeuralConfig struct {
	Inputs        int     `yaml:"inputs"`
	Hidden        int     `yaml:"hidden"`
	Outputs       int     `yaml:"outputs"`
	JumpThreshold float64 `yaml:"jump_threshold"` // Flap when the output is strictly above this
	WeightMin     float64 `yaml:"weight_min"`
	WeightMax     float64 `yaml:"weight_max"`
}

// EvolutionConfig holds genetic algorithm parameters.
type EvolutionConfig struct {
	Population            int     `yaml:"population"`
	EliteFraction         float64 `yaml:"elite_fraction"`          // Share of N bred from and kept unmutated
	SurvivorFraction      float64 `yaml:"survivor_fraction"`       // Share of N kept from the mutated rest
	WeightMutationProb    float64 `yaml:"weight_mutation_prob"`    // Per-weight replacement probability
	CrossoverMix          float64 `yaml:"crossover_mix"`           // Probability a child weight comes from the first parent
	OffspringMutationProb float64 `yaml:"offspring_mutation_prob"` // Chance an offspring is mutated once more
	ForwardSpeed          float64 `yaml:"forward_speed"`           // Fitness bonus per ms lived
}

// RunConfig holds host loop settings.
type RunConfig struct {
	Seed           int64 `yaml:"seed"`            // 0 = time based
	MaxGenerations int   `yaml:"max_generations"` // 0 = unbounded
	StepsPerUpdate int   `yaml:"steps_per_update"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogEvery int `yaml:"log_every"` // Log every Nth generation
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	YShift     float64 // |gap/2 - pipes.max|, lifts the vertical offset above zero
	Normalizer float64 // Full span of the vertical offset between bird and gap center
	TickMillis float64 // 1000 / fps
}

// EliteCount returns floor(N * elite_fraction).
func (c *Config) EliteCount() int {
	return int(math.Floor(float64(c.Evolution.Population) * c.Evolution.EliteFraction))
}

// SurvivorCount returns floor(N * survivor_fraction).
func (c *Config) SurvivorCount() int {
	return int(math.Floor(float64(c.Evolution.Population) * c.Evolution.SurvivorFraction))
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
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
	return cfg, nil
}

// Validate checks the configuration and recomputes derived values.
func (c *Config) Validate() error {
	if c.Evolution.Population < 2 {
		return fmt.Errorf("%w: population %d < 2", ErrInvalid, c.Evolution.Population)
	}

	unit := []struct {
		name string
		v    float64
	}{
		{"elite_fraction", c.Evolution.EliteFraction},
		{"survivor_fraction", c.Evolution.SurvivorFraction},
		{"weight_mutation_prob", c.Evolution.WeightMutationProb},
		{"crossover_mix", c.Evolution.CrossoverMix},
		{"offspring_mutation_prob", c.Evolution.OffspringMutationProb},
	}
	for _, u := range unit {
		if math.IsNaN(u.v) || u.v < 0 || u.v > 1 {
			return fmt.Errorf("%w: %s %v outside [0,1]", ErrInvalid, u.name, u.v)
		}
	}

	elite := c.EliteCount()
	if elite < 2 {
		return fmt.Errorf("%w: elite count %d < 2 (population %d, elite_fraction %v)",
			ErrInvalid, elite, c.Evolution.Population, c.Evolution.EliteFraction)
	}
	if survivors := c.SurvivorCount(); elite+survivors > c.Evolution.Population {
		return fmt.Errorf("%w: elite %d + survivors %d exceed population %d",
			ErrInvalid, elite, survivors, c.Evolution.Population)
	}

	if c.Neural.Inputs != SensorCount {
		return fmt.Errorf("%w: neural.inputs must be %d, got %d", ErrInvalid, SensorCount, c.Neural.Inputs)
	}
	if c.Neural.Hidden < 1 || c.Neural.Outputs < 1 {
		return fmt.Errorf("%w: layer sizes must be positive (hidden %d, outputs %d)",
			ErrInvalid, c.Neural.Hidden, c.Neural.Outputs)
	}
	if !(c.Neural.WeightMin < c.Neural.WeightMax) {
		return fmt.Errorf("%w: weight range [%v, %v] is empty", ErrInvalid, c.Neural.WeightMin, c.Neural.WeightMax)
	}

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 || c.Screen.FPS <= 0 {
		return fmt.Errorf("%w: screen %vx%v @ %d fps", ErrInvalid, c.Screen.Width, c.Screen.Height, c.Screen.FPS)
	}
	if c.Bird.Width <= 0 || c.Bird.Height <= 0 {
		return fmt.Errorf("%w: bird size %vx%v", ErrInvalid, c.Bird.Width, c.Bird.Height)
	}
	if c.Pipes.GapSize <= 0 || c.Pipes.Width <= 0 || c.Pipes.AddGap < 0 {
		return fmt.Errorf("%w: pipe geometry gap %v width %v add_gap %v",
			ErrInvalid, c.Pipes.GapSize, c.Pipes.Width, c.Pipes.AddGap)
	}
	if c.Pipes.Max-c.Pipes.GapSize <= c.Pipes.Min {
		return fmt.Errorf("%w: pipes.max %v - gap %v must exceed pipes.min %v",
			ErrInvalid, c.Pipes.Max, c.Pipes.GapSize, c.Pipes.Min)
	}

	if c.Run.StepsPerUpdate < 1 {
		c.Run.StepsPerUpdate = 1
	}
	if c.Telemetry.LogEvery < 1 {
		c.Telemetry.LogEvery = 1
	}

	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	halfGap := c.Pipes.GapSize / 2
	// Bird at the bottom vs. the highest gap center, and bird at the top vs. the lowest.
	maxDiff := c.Screen.Height - c.Pipes.Min - halfGap
	minDiff := halfGap - c.Pipes.Max
	c.Derived.YShift = math.Abs(minDiff)
	c.Derived.Normalizer = math.Abs(minDiff) + maxDiff
	c.Derived.TickMillis = 1000 / float64(c.Screen.FPS)
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
