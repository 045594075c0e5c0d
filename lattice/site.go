package lattice

import "fmt"

// Site is one cell of the periodic lattice: its occupancy, discrete
// particle state, per-level neighbor counts, bookkept energy, and the
// diffusion reactions that depart from it (spec.md §3).
type Site struct {
	Index   int
	X, Y, Z int

	Active bool
	State  ParticleState

	// NNeighbors[level] counts active sites at Chebyshev level `level`
	// in this site's neighborhood (spec.md §3, I2).
	NNeighbors []int

	// Energy is the sum of pair-potential contributions from active
	// sites in this site's neighborhood shell (spec.md §3, I3).
	Energy float64

	// Neighborhood holds every site index in the full (2L+1)^3 cube
	// except the center, in the same order as the lattice's shared
	// neighborSpecs (so NNeighbors[spec.level] and spec.potential line
	// up positionally with Neighborhood[i]).
	Neighborhood []int

	// Near26 holds the 26 near-neighborhood (Chebyshev <= 1) site
	// indices, in the same order as geometry.Near26Offsets.
	Near26 []int

	// SiteReactions are this site's outgoing diffusion reactions, one
	// per Near26 direction, built once at lattice construction.
	SiteReactions []Reaction

	// ActiveReactions is the subset of SiteReactions currently enabled;
	// rebuilt by the affected-site pump whenever this site is affected.
	ActiveReactions []Reaction
}

func newSite(idx, x, y, z, l int) Site {
	return Site{
		Index:      idx,
		X:          x,
		Y:          y,
		Z:          z,
		State:      Solution,
		NNeighbors: make([]int, l),
	}
}

// IsLegalToSpawn reports whether idx is inactive and every one of its
// site reactions is statically legal (spec.md §4.3), used only during
// random seeding.
func (s *Site) IsLegalToSpawn(l *Lattice) bool {
	if s.Active {
		return false
	}
	for _, r := range s.SiteReactions {
		if !r.AllowedAtSite(l) {
			return false
		}
	}
	return true
}

// DebugString renders a short human-readable summary of the site,
// grounded on original_source/src/libs/site.cpp's dumpInfo. Neither the
// step loop, the debug trace buffer nor the tests call it.
func (s *Site) DebugString() string {
	status := "inactive"
	if s.Active {
		status = "active"
	}
	return fmt.Sprintf("site(%d,%d,%d) idx=%d state=%s %s energy=%.6g nNeighbors=%v",
		s.X, s.Y, s.Z, s.Index, s.State, status, s.Energy, s.NNeighbors)
}
