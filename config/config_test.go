package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.System.BoxSize[0] <= 0 {
		t.Fatalf("box size not loaded: %+v", cfg.System)
	}
	if cfg.Solver.SeedType != "specific" && cfg.Solver.SeedType != "time" {
		t.Fatalf("unexpected seed type: %q", cfg.Solver.SeedType)
	}
}

func TestLoadOverridesMergeWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	if err := os.WriteFile(path, []byte("solver:\n  n_cycles: 5\n"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(path): %v", err)
	}
	if cfg.Solver.NCycles != 5 {
		t.Fatalf("NCycles = %d, want 5 (override)", cfg.Solver.NCycles)
	}
	if cfg.Solver.CyclesPerOutput <= 0 {
		t.Fatalf("CyclesPerOutput = %d, want default retained", cfg.Solver.CyclesPerOutput)
	}
}

func TestValidateRejectsUndersizedBox(t *testing.T) {
	cfg := &Config{
		System:         SystemConfig{BoxSize: [3]int{3, 50, 50}, NNeighborsLimit: 2},
		Solver:         SolverConfig{NCycles: 1, CyclesPerOutput: 1, SeedType: "time"},
		Initialization: InitializationConfig{SaturationLevel: 0.1, RelativeSeedSize: 0.1},
		Reactions: ReactionsConfig{
			LinearRateScale: 1,
			Diffusion:       DiffusionConfig{RPower: 6, Scale: 1},
		},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for box_size <= 2*n_neighbors_limit")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestValidateRejectsBadSeedType(t *testing.T) {
	cfg := &Config{
		System:         SystemConfig{BoxSize: [3]int{50, 50, 50}, NNeighborsLimit: 2},
		Solver:         SolverConfig{NCycles: 1, CyclesPerOutput: 1, SeedType: "bogus"},
		Initialization: InitializationConfig{SaturationLevel: 0.1, RelativeSeedSize: 0.1},
		Reactions: ReactionsConfig{
			LinearRateScale: 1,
			Diffusion:       DiffusionConfig{RPower: 6, Scale: 1},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bogus seed_type")
	}
}

func TestValidateAcceptsZeroSaturationAndSeedSize(t *testing.T) {
	cfg := &Config{
		System:         SystemConfig{BoxSize: [3]int{50, 50, 50}, NNeighborsLimit: 2},
		Solver:         SolverConfig{NCycles: 1, CyclesPerOutput: 1, SeedType: "time"},
		Initialization: InitializationConfig{SaturationLevel: 0, RelativeSeedSize: 0},
		Reactions: ReactionsConfig{
			LinearRateScale: 1,
			Diffusion:       DiffusionConfig{RPower: 6, Scale: 1},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() with saturation_level=0 and relative_seed_size=0: %v", err)
	}
}

func TestValidateRejectsSaturationAndSeedSizeAtOne(t *testing.T) {
	base := Config{
		System: SystemConfig{BoxSize: [3]int{50, 50, 50}, NNeighborsLimit: 2},
		Solver: SolverConfig{NCycles: 1, CyclesPerOutput: 1, SeedType: "time"},
		Reactions: ReactionsConfig{
			LinearRateScale: 1,
			Diffusion:       DiffusionConfig{RPower: 6, Scale: 1},
		},
	}

	saturation := base
	saturation.Initialization = InitializationConfig{SaturationLevel: 1, RelativeSeedSize: 0.1}
	if err := saturation.Validate(); err == nil {
		t.Fatal("expected validation error for saturation_level == 1")
	}

	seedSize := base
	seedSize.Initialization = InitializationConfig{SaturationLevel: 0.1, RelativeSeedSize: 1}
	if err := seedSize.Validate(); err == nil {
		t.Fatal("expected validation error for relative_seed_size == 1")
	}
}

func TestCfgBeforeInitReturnsConfigError(t *testing.T) {
	global = nil
	_, err := Cfg()
	if err == nil {
		t.Fatal("expected error calling Cfg before Init")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}
