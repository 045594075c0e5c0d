// Package solver implements the top-level kMC step loop (spec.md C6,
// §4.6): construct the lattice and its reaction catalog, seed an
// initial crystal, then repeatedly rebuild the rate index, draw a
// reaction, execute it, and advance simulated time.
package solver

import (
	"log/slog"
	"math"

	"github.com/joebradly/kMC/boundary"
	"github.com/joebradly/kMC/config"
	"github.com/joebradly/kMC/geometry"
	"github.com/joebradly/kMC/lattice"
	"github.com/joebradly/kMC/rateindex"
	"github.com/joebradly/kMC/ratemodel"
	"github.com/joebradly/kMC/rng"
	"github.com/joebradly/kMC/trajectory"
)

// Solver owns every collaborator the step loop needs (spec.md §5: these
// are struct fields, not package globals).
type Solver struct {
	Geo      *geometry.Geometry
	RM       *ratemodel.RateModel
	Lattice  *lattice.Lattice
	Boundary boundary.Boundary
	RNG      rng.Source

	rateIndex rateindex.RateIndex

	cfg config.Config

	SimTime float64
	Cycle   int

	Trace *trajectory.DebugTrace
}

// New constructs a Solver from configuration, wiring a fresh lattice
// and reaction catalog over a periodic boundary.
func New(cfg config.Config, source rng.Source) *Solver {
	geo := geometry.New(cfg.System.BoxSize[0], cfg.System.BoxSize[1], cfg.System.BoxSize[2], cfg.System.NNeighborsLimit)
	rm := ratemodel.New(geo, cfg.Reactions.Diffusion.RPower, cfg.Reactions.Diffusion.Scale, cfg.Reactions.Beta, cfg.Reactions.LinearRateScale)
	lat := lattice.New(geo, rm)

	return &Solver{
		Geo:      geo,
		RM:       rm,
		Lattice:  lat,
		Boundary: boundary.Periodic{},
		RNG:      source,
		cfg:      cfg,
		Trace:    trajectory.NewDebugTrace(256),
	}
}

// InitializeCrystal seeds a fixed crystal at the lattice center, grows
// a cubic shell of active sites around it sized by RelativeSeedSize,
// then sprinkles additional solution-phase occupancy at SaturationLevel
// outside an exclusion ring the width of the neighbor limit (spec.md
// §4.6, grounded on original_source/src/libs/kmcsolver.cpp initialize()
// with the seed-shell refinement spec.md requires in addition).
func (s *Solver) InitializeCrystal() error {
	nx, ny, nz := s.Geo.NX, s.Geo.NY, s.Geo.NZ
	cx, cy, cz := nx/2, ny/2, nz/2
	center := s.Geo.Index(cx, cy, cz)

	if err := s.Lattice.SpawnFixedCrystal(center); err != nil {
		return err
	}

	seedRadius := int(math.Round(float64(min3(nx, ny, nz)) * s.cfg.Initialization.RelativeSeedSize / 2))
	exclusion := s.Geo.L

	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				idx := s.Geo.Index(x, y, z)
				if idx == center {
					continue
				}
				dx, dy, dz := s.Geo.Delta(cx, cy, cz, x, y, z)
				chebyshev := maxAbs3(dx, dy, dz)

				site := s.Lattice.SiteAt(idx)
				if !site.IsLegalToSpawn(s.Lattice) {
					continue
				}

				switch {
				case chebyshev <= seedRadius:
					if err := s.Lattice.Activate(idx); err != nil {
						return err
					}
				case chebyshev <= seedRadius+exclusion:
					// exclusion ring: never randomly seeded, so the
					// grown shell has a clean crystal/solution boundary
				default:
					if site.IsLegalToSpawn(s.Lattice) && s.RNG.Uniform() < s.cfg.Initialization.SaturationLevel {
						if err := s.Lattice.Activate(idx); err != nil {
							return err
						}
					}
				}
			}
		}
	}

	return nil
}

// Step performs one kMC cycle: rebuild the rate index over current
// active reactions, draw a uniform random number, select and execute
// the corresponding reaction, then advance simulated time by
// linearRateScale/kTot (spec.md §4.6, original_source/src/libs/kmcsolver.cpp
// run()). Step is a no-op returning ok=false once kTot reaches zero (no
// legal moves remain).
func (s *Solver) Step() (ok bool, err error) {
	s.rateIndex.Rebuild(s.Lattice)
	if s.rateIndex.KTot <= 0 {
		return false, nil
	}

	u := s.RNG.Uniform()
	R := s.rateIndex.KTot * u
	i := s.rateIndex.Select(R)
	if i >= s.rateIndex.Len() {
		i = s.rateIndex.Len() - 1
	}
	reaction := s.rateIndex.AllReactions[i]

	if err := reaction.Execute(s.Lattice); err != nil {
		return false, err
	}

	s.SimTime += s.RM.LinearRateScale / s.rateIndex.KTot
	s.Cycle++

	s.Trace.Push(trajectory.TraceEntry{
		Cycle:       s.Cycle,
		Description: "diffusion reaction executed",
		Rate:        reaction.Rate(),
		SimTime:     s.SimTime,
	})

	return true, nil
}

// KTot returns the total reaction rate computed by the most recent
// Rebuild (zero before the first Step).
func (s *Solver) KTot() float64 {
	return s.rateIndex.KTot
}

// Run executes up to nCycles steps, logging progress and emitting
// trajectory/stats callbacks every cyclesPerOutput cycles. onOutput may
// be nil. Run stops early (without error) once Step reports no legal
// moves remain, and stops with error on any *lattice.InvariantError,
// which is treated as fatal rather than recoverable.
func (s *Solver) Run(nCycles, cyclesPerOutput int, onOutput func(*Solver)) error {
	for i := 0; i < nCycles; i++ {
		ok, err := s.Step()
		if err != nil {
			return err
		}
		if !ok {
			slog.Info("kmc run stopped: no active reactions remain", "cycle", s.Cycle, "sim_time", s.SimTime)
			return nil
		}

		if s.Cycle%cyclesPerOutput == 0 {
			slog.Info("kmc progress", "cycle", s.Cycle, "sim_time", s.SimTime, "active_sites", s.Lattice.TotalActiveSites)
			if onOutput != nil {
				onOutput(s)
			}
		}
	}
	return nil
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxAbs3(a, b, c int) int {
	m := absInt(a)
	if v := absInt(b); v > m {
		m = v
	}
	if v := absInt(c); v > m {
		m = v
	}
	return m
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
