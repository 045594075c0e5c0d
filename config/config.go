// Package config provides configuration loading and validation for the
// simulation (spec.md §6), following pthm-soup's config.config pattern:
// embedded YAML defaults merged with an optional override file.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ConfigError reports a configuration load or validation failure. It is
// returned, never panicked, so callers (library or CLI) decide how to
// react.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Msg)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

func configError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Config holds all simulation configuration parameters.
type Config struct {
	System         SystemConfig         `yaml:"system"`
	Solver         SolverConfig         `yaml:"solver"`
	Initialization InitializationConfig `yaml:"initialization"`
	Reactions      ReactionsConfig      `yaml:"reactions"`
}

// SystemConfig holds the lattice shape.
type SystemConfig struct {
	BoxSize         [3]int `yaml:"box_size"`
	NNeighborsLimit int    `yaml:"n_neighbors_limit"`
}

// SolverConfig holds step-loop and RNG seeding parameters.
type SolverConfig struct {
	NCycles         int    `yaml:"n_cycles"`
	CyclesPerOutput int    `yaml:"cycles_per_output"`
	SeedType        string `yaml:"seed_type"` // "time" or "specific"
	SpecificSeed    int64  `yaml:"specific_seed"`
}

// InitializationConfig holds initial-seeding parameters.
type InitializationConfig struct {
	SaturationLevel  float64 `yaml:"saturation_level"`
	RelativeSeedSize float64 `yaml:"relative_seed_size"`
}

// ReactionsConfig holds the reaction catalog's rate-model parameters.
type ReactionsConfig struct {
	Beta            float64         `yaml:"beta"`
	LinearRateScale float64         `yaml:"linear_rate_scale"`
	Diffusion       DiffusionConfig `yaml:"diffusion"`
}

// DiffusionConfig holds the diffusion reaction's potential-tensor
// parameters.
type DiffusionConfig struct {
	RPower float64 `yaml:"r_power"`
	Scale  float64 `yaml:"scale"`
}

// global holds the loaded configuration for library-wide convenience
// access, mirroring pthm-soup's Init/Cfg singleton pair.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration loaded by Init. Unlike
// pthm-soup's Cfg(), this never panics: callers that have not called
// Init get a ConfigError instead, since config is a library concern
// here, not an application singleton.
func Cfg() (*Config, error) {
	if global == nil {
		return nil, configError("", "Cfg called before Init")
	}
	return global, nil
}

// Load loads configuration from a YAML file, merging with embedded
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, configError("", "parsing embedded defaults: %v", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, configError("", "reading config file: %v", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, configError("", "parsing config file: %v", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the solver and lattice assume hold,
// including the N > 2L box-size constraint.
func (c *Config) Validate() error {
	for axis, n := range c.System.BoxSize {
		if n <= 0 {
			return configError(fmt.Sprintf("system.box_size[%d]", axis), "must be positive, got %d", n)
		}
		if n <= 2*c.System.NNeighborsLimit {
			return configError(fmt.Sprintf("system.box_size[%d]", axis),
				"must exceed 2*n_neighbors_limit (%d), got %d", 2*c.System.NNeighborsLimit, n)
		}
	}
	if c.System.NNeighborsLimit <= 0 {
		return configError("system.n_neighbors_limit", "must be positive, got %d", c.System.NNeighborsLimit)
	}
	if c.Solver.NCycles <= 0 {
		return configError("solver.n_cycles", "must be positive, got %d", c.Solver.NCycles)
	}
	if c.Solver.CyclesPerOutput <= 0 {
		return configError("solver.cycles_per_output", "must be positive, got %d", c.Solver.CyclesPerOutput)
	}
	switch c.Solver.SeedType {
	case "time", "specific":
	default:
		return configError("solver.seed_type", "must be %q or %q, got %q", "time", "specific", c.Solver.SeedType)
	}
	if c.Initialization.SaturationLevel < 0 || c.Initialization.SaturationLevel >= 1 {
		return configError("initialization.saturation_level", "must be in [0,1), got %v", c.Initialization.SaturationLevel)
	}
	if c.Initialization.RelativeSeedSize < 0 || c.Initialization.RelativeSeedSize >= 1 {
		return configError("initialization.relative_seed_size", "must be in [0,1), got %v", c.Initialization.RelativeSeedSize)
	}
	if c.Reactions.LinearRateScale <= 0 {
		return configError("reactions.linear_rate_scale", "must be positive, got %v", c.Reactions.LinearRateScale)
	}
	if c.Reactions.Diffusion.RPower <= 0 {
		return configError("reactions.diffusion.r_power", "must be positive, got %v", c.Reactions.Diffusion.RPower)
	}
	if c.Reactions.Diffusion.Scale <= 0 {
		return configError("reactions.diffusion.scale", "must be positive, got %v", c.Reactions.Diffusion.Scale)
	}
	return nil
}
