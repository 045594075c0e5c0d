// Package lattice implements the periodic site lattice: per-site state
// machine, energy bookkeeping, the diffusion reaction catalog, and the
// affected-site pump that keeps both consistent after every mutation
// (spec.md §3, §4.3, §4.4, §9).
package lattice

import (
	"fmt"
	"math"

	"github.com/joebradly/kMC/geometry"
	"github.com/joebradly/kMC/ratemodel"
)

// InvariantError reports a violated core invariant (spec.md §7) — an
// activation of an already-active site, an invalid state transition, an
// empty saddle-point neighbor intersection, and so on. These are fatal
// programming errors: callers should stop the step loop, not retry.
type InvariantError struct {
	Kind string
	Msg  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("lattice: invariant violation [%s]: %s", e.Kind, e.Msg)
}

func invariantError(kind, format string, args ...any) *InvariantError {
	return &InvariantError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// neighborSpec is a precomputed, shared (not per-site) description of one
// cell of the full neighborhood cube: its level and pair potential are
// the same for every site by translational symmetry of the periodic box.
type neighborSpec struct {
	dx, dy, dz int
	level      int
	potential  float64
}

// Lattice owns every Site, the process-wide totals, and the affected-site
// work queue. It replaces the C++ source's static globals with per-instance
// fields so more than one Lattice/Solver can coexist (spec.md §5, §9).
type Lattice struct {
	Geo *geometry.Geometry
	RM  *ratemodel.RateModel

	sites []Site

	TotalActiveSites int
	TotalEnergy      float64

	neighborSpecs []neighborSpec
	near26        []geometry.Offset

	affectedMask  []bool
	affectedQueue []int
}

// New builds every Site and its neighborhood/reaction tables for an
// NX*NY*NZ periodic box described by geo and rm.
func New(geo *geometry.Geometry, rm *ratemodel.RateModel) *Lattice {
	n := geo.NumSites()

	l := &Lattice{
		Geo:          geo,
		RM:           rm,
		sites:        make([]Site, n),
		affectedMask: make([]bool, n),
	}

	offsets := geo.NeighborOffsets()
	l.neighborSpecs = make([]neighborSpec, len(offsets))
	for i, o := range offsets {
		l.neighborSpecs[i] = neighborSpec{
			dx:        o.DX,
			dy:        o.DY,
			dz:        o.DZ,
			level:     o.Level,
			potential: rm.PotentialAtOffset(o.DX, o.DY, o.DZ),
		}
	}
	l.near26 = geometry.Near26Offsets()

	for x := 0; x < geo.NX; x++ {
		for y := 0; y < geo.NY; y++ {
			for z := 0; z < geo.NZ; z++ {
				idx := geo.Index(x, y, z)
				l.sites[idx] = newSite(idx, x, y, z, geo.L)
			}
		}
	}

	for idx := range l.sites {
		l.buildNeighborhood(idx)
	}
	for idx := range l.sites {
		l.buildReactions(idx)
	}

	return l
}

func (l *Lattice) buildNeighborhood(idx int) {
	s := &l.sites[idx]

	s.Neighborhood = make([]int, len(l.neighborSpecs))
	for i, spec := range l.neighborSpecs {
		s.Neighborhood[i] = l.Geo.Index(s.X+spec.dx, s.Y+spec.dy, s.Z+spec.dz)
	}

	s.Near26 = make([]int, len(l.near26))
	for i, o := range l.near26 {
		s.Near26[i] = l.Geo.Index(s.X+o.DX, s.Y+o.DY, s.Z+o.DZ)
	}
}

func (l *Lattice) buildReactions(idx int) {
	s := &l.sites[idx]
	s.SiteReactions = make([]Reaction, len(s.Near26))
	for i, dst := range s.Near26 {
		s.SiteReactions[i] = &DiffusionReaction{Src: idx, Dst: dst}
	}
}

// NumSites returns the number of sites in the lattice.
func (l *Lattice) NumSites() int {
	return len(l.sites)
}

// SiteAt returns a pointer to the site at the given flat index.
func (l *Lattice) SiteAt(idx int) *Site {
	return &l.sites[idx]
}

// ForEachSite calls f for every site in row-major order. f must not
// mutate the lattice's site count or reorder sites.
func (l *Lattice) ForEachSite(f func(idx int, s *Site)) {
	for i := range l.sites {
		f(i, &l.sites[i])
	}
}

// Activate turns on the particle at idx, running the full state-machine
// and affected-site pump described in spec.md §4.3/§4.6.
func (l *Lattice) Activate(idx int) error {
	s := l.SiteAt(idx)
	if s.Active {
		return invariantError("activate-active", "site %d is already active", idx)
	}
	if s.State == Crystal {
		return invariantError("activate-crystal", "site %d is a crystal but was deactive", idx)
	}

	s.Active = true

	if s.State == Surface {
		if err := l.setParticleState(idx, Crystal); err != nil {
			return err
		}
	}

	l.enqueueSelfAndNeighbors(idx)
	l.informNeighborhoodOnChange(idx, +1)
	l.TotalActiveSites++

	return l.drainAffected()
}

// Deactivate turns off the particle at idx. Per spec.md §4.3/§9, the
// acting site is not re-queued here — deactivate is only ever called as
// the first half of DiffusionReaction.Execute, whose paired Activate on
// an adjacent site re-queues this site as one of that site's neighbors.
func (l *Lattice) Deactivate(idx int) error {
	s := l.SiteAt(idx)
	if !s.Active {
		return invariantError("deactivate-inactive", "site %d is already inactive", idx)
	}
	if s.State == Surface {
		return invariantError("deactivate-surface", "site %d is active but marked surface", idx)
	}

	s.Active = false

	if s.State == Crystal {
		if err := l.setParticleState(idx, Surface); err != nil {
			return err
		}
	}

	l.enqueueNeighbors(idx)
	l.informNeighborhoodOnChange(idx, -1)
	l.TotalActiveSites--

	return l.drainAffected()
}

// SpawnFixedCrystal activates idx as a permanent crystal seed: marking it
// Surface before the normal Activate pathway makes Activate's own
// Surface->Crystal branch crystallize it and propagate Surface onto its
// Solution neighbors, exactly mirroring the original spawnAsCrystal/activate
// pairing (original_source/src/libs/site.cpp).
func (l *Lattice) SpawnFixedCrystal(idx int) error {
	s := l.SiteAt(idx)
	if s.Active {
		return invariantError("spawn-active", "site %d is already active", idx)
	}
	s.State = Surface
	return l.Activate(idx)
}

// setParticleState implements the state transition table of spec.md §4.3
// as a switch on the target state nested around a switch on the current
// state; there is no separate lookup table keyed by (from, to).
func (l *Lattice) setParticleState(idx int, target ParticleState) error {
	s := l.SiteAt(idx)

	switch target {
	case Surface:
		switch s.State {
		case Solution:
			if s.Active {
				return l.crystallize(idx)
			}
			s.State = Surface
			l.enqueueSelfAndNeighbors(idx)
			return nil
		case Crystal:
			s.State = Surface
			if err := l.propagateToNeighbors(idx, Surface, Solution); err != nil {
				return err
			}
			l.enqueueSelfAndNeighbors(idx)
			return nil
		case Surface:
			return nil
		default:
			return invariantError("invalid-transition", "site %d: %s -> surface", idx, s.State)
		}

	case Crystal:
		switch s.State {
		case Surface:
			return l.crystallize(idx)
		default:
			return invariantError("invalid-transition", "site %d: %s -> crystal", idx, s.State)
		}

	case Solution:
		switch s.State {
		case Surface:
			if !l.hasNearNeighboring(idx, Crystal) {
				s.State = Solution
				l.enqueueSelfAndNeighbors(idx)
			}
			return nil
		default:
			return invariantError("invalid-transition", "site %d: %s -> solution", idx, s.State)
		}

	default:
		return invariantError("invalid-transition", "site %d: unknown target state", idx)
	}
}

// crystallize sets idx to Crystal and promotes its Solution near-neighbors
// to Surface (spec.md §4.3's "crystallize" helper).
func (l *Lattice) crystallize(idx int) error {
	s := l.SiteAt(idx)
	s.State = Crystal
	return l.propagateToNeighbors(idx, Solution, Surface)
}

// propagateToNeighbors applies setParticleState(newState) to every
// near-neighbor of idx currently in reqOldState.
func (l *Lattice) propagateToNeighbors(idx int, reqOldState, newState ParticleState) error {
	s := l.SiteAt(idx)
	for _, n := range s.Near26 {
		if l.SiteAt(n).State == reqOldState {
			if err := l.setParticleState(n, newState); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Lattice) hasNearNeighboring(idx int, state ParticleState) bool {
	s := l.SiteAt(idx)
	for _, n := range s.Near26 {
		if l.SiteAt(n).State == state {
			return true
		}
	}
	return false
}

// informNeighborhoodOnChange updates every neighbor's nNeighbors count and
// energy by the pair potential at the relevant offset, and folds the same
// delta into the running total energy (spec.md §4.2, I3/I4).
func (l *Lattice) informNeighborhoodOnChange(idx int, change int) {
	s := l.SiteAt(idx)
	for i, n := range s.Neighborhood {
		spec := l.neighborSpecs[i]
		neighbor := l.SiteAt(n)
		neighbor.NNeighbors[spec.level] += change
		dE := float64(change) * spec.potential
		neighbor.Energy += dE
		l.TotalEnergy += dE
	}
}

func (l *Lattice) enqueueSelfAndNeighbors(idx int) {
	l.enqueueAffected(idx)
	l.enqueueNeighbors(idx)
}

func (l *Lattice) enqueueNeighbors(idx int) {
	for _, n := range l.SiteAt(idx).Neighborhood {
		l.enqueueAffected(n)
	}
}

func (l *Lattice) enqueueAffected(idx int) {
	if l.affectedMask[idx] {
		return
	}
	l.affectedMask[idx] = true
	l.affectedQueue = append(l.affectedQueue, idx)
}

// drainAffected processes the affected-site work list to a fixed point:
// each site's active-reaction set and rates are recomputed, and further
// cascading transitions may enqueue more sites while this runs.
func (l *Lattice) drainAffected() error {
	for len(l.affectedQueue) > 0 {
		idx := l.affectedQueue[0]
		l.affectedQueue = l.affectedQueue[1:]
		l.affectedMask[idx] = false

		if err := l.recomputeReactions(idx); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lattice) recomputeReactions(idx int) error {
	s := l.SiteAt(idx)
	s.ActiveReactions = s.ActiveReactions[:0]

	if !s.Active {
		return nil
	}

	for _, r := range s.SiteReactions {
		if r.IsNotBlocked(l) {
			s.ActiveReactions = append(s.ActiveReactions, r)
		}
	}
	for _, r := range s.ActiveReactions {
		if err := r.CalcRate(l); err != nil {
			return err
		}
	}
	return nil
}

// SaddleEnergy computes Esp for a hop from srcIdx to dstIdx per spec.md
// §4.2: the sum of scale/r^rPower over every active site in the
// intersection of the two sites' neighborhoods, r being the minimum-image
// distance from the hop's midpoint to that site.
func (l *Lattice) SaddleEnergy(srcIdx, dstIdx int) (float64, error) {
	src := l.SiteAt(srcIdx)
	dst := l.SiteAt(dstIdx)

	mx := float64(geometry.Wrap(src.X+dst.X, l.Geo.NX)) / 2.0
	my := float64(geometry.Wrap(src.Y+dst.Y, l.Geo.NY)) / 2.0
	mz := float64(geometry.Wrap(src.Z+dst.Z, l.Geo.NZ)) / 2.0

	srcSet := make(map[int]struct{}, len(src.Neighborhood))
	for _, n := range src.Neighborhood {
		srcSet[n] = struct{}{}
	}

	var esp float64
	intersectionEmpty := true

	for _, n := range dst.Neighborhood {
		if _, ok := srcSet[n]; !ok {
			continue
		}
		intersectionEmpty = false

		t := l.SiteAt(n)
		if !t.Active {
			continue
		}

		dx := math.Abs(mx - float64(t.X))
		if dx > float64(l.Geo.L) {
			dx = float64(l.Geo.NX) - dx
		}
		dy := math.Abs(my - float64(t.Y))
		if dy > float64(l.Geo.L) {
			dy = float64(l.Geo.NY) - dy
		}
		dz := math.Abs(mz - float64(t.Z))
		if dz > float64(l.Geo.L) {
			dz = float64(l.Geo.NZ) - dz
		}

		r := math.Sqrt(dx*dx + dy*dy + dz*dz)
		esp += l.RM.SaddleTerm(r)
	}

	if intersectionEmpty {
		return 0, invariantError("empty-saddle-intersection",
			"sites %d and %d share no neighborhood site", srcIdx, dstIdx)
	}

	return esp, nil
}
