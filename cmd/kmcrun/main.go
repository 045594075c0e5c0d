// Command kmcrun runs a kinetic Monte Carlo crystal-growth simulation
// from a configuration file and writes its trajectory and run
// statistics to an output directory (spec.md §6 CLI surface), grounded
// on cmd/optimize/main.go's flag-based style.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joebradly/kMC/config"
	"github.com/joebradly/kMC/rng"
	"github.com/joebradly/kMC/solver"
	"github.com/joebradly/kMC/trajectory"
)

func main() {
	configPath := flag.String("config", "", "Configuration YAML file (empty = use embedded defaults)")
	outputDir := flag.String("output", "", "Output directory for trajectory and stats (required)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("-output is required")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("invalid -log-level %q: %v", *logLevel, err)
	}
	slog.SetLogLoggerLevel(level)

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg, err := config.Cfg()
	if err != nil {
		log.Fatalf("reading config: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	seedType := rng.FromTime
	if cfg.Solver.SeedType == string(rng.Specific) {
		seedType = rng.Specific
	}
	source := rng.New(seedType, cfg.Solver.SpecificSeed)

	s := solver.New(*cfg, source)
	if err := s.InitializeCrystal(); err != nil {
		log.Fatalf("initializing crystal: %v", err)
	}

	statsWriter, err := trajectory.NewStatsWriter(filepath.Join(*outputDir, "stats.csv"))
	if err != nil {
		log.Fatalf("creating stats writer: %v", err)
	}
	defer statsWriter.Close()

	onOutput := func(s *solver.Solver) {
		if err := statsWriter.Write(trajectory.RunStats{
			Cycle:            s.Cycle,
			SimTime:          s.SimTime,
			KTot:             s.KTot(),
			TotalActiveSites: s.Lattice.TotalActiveSites,
			TotalEnergy:      s.Lattice.TotalEnergy,
		}); err != nil {
			slog.Error("writing run stats", "error", err)
		}

		xyzPath := filepath.Join(*outputDir, "trajectory.xyz")
		f, err := os.OpenFile(xyzPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("opening trajectory file", "error", err)
			return
		}
		defer f.Close()
		if err := trajectory.WriteXYZ(f, s.Lattice); err != nil {
			slog.Error("writing trajectory frame", "error", err)
		}
	}

	if err := s.Run(cfg.Solver.NCycles, cfg.Solver.CyclesPerOutput, onOutput); err != nil {
		log.Fatalf("kmc run failed: %v", err)
	}

	slog.Info("run complete", "cycles", s.Cycle, "sim_time", s.SimTime, "output", *outputDir)
}
