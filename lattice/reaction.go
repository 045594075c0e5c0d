package lattice

// Reaction is the polymorphic reaction contract of spec.md §4.4 — a
// minimal capability interface standing in for the C++ source's
// inheritance hierarchy (spec.md §9: "Replace inheritance with ... a
// minimal capability"). DiffusionReaction is the only concrete variant
// the core ships.
type Reaction interface {
	// IsNotBlocked reports whether this reaction is eligible to fire
	// against the current lattice.
	IsNotBlocked(l *Lattice) bool

	// AllowedAtSite is the static legality check used only during
	// initial random seeding (spec.md §4.3 isLegalToSpawn).
	AllowedAtSite(l *Lattice) bool

	// CalcRate recomputes and stores this reaction's rate.
	CalcRate(l *Lattice) error

	// Execute performs the state change and leaves the lattice
	// consistent (it must drain any cascading affected-site updates
	// itself — spec.md §4.4).
	Execute(l *Lattice) error

	// Rate returns the last value computed by CalcRate.
	Rate() float64
}

// DiffusionReaction moves a particle from Src to Dst, one of Src's 26
// near-neighbor directions (spec.md §4.4).
type DiffusionReaction struct {
	Src, Dst int

	rate        float64
	lastUsedE   float64
	lastUsedEsp float64
}

// IsNotBlocked allows a hop only onto a surface, or onto an isolated
// solution site — the nNeighbors[0] == 1 case counts Src itself, per
// spec.md §9's clarification that this is the intended reading.
func (r *DiffusionReaction) IsNotBlocked(l *Lattice) bool {
	dst := l.SiteAt(r.Dst)
	return !dst.Active && (dst.State == Surface || dst.NNeighbors[0] == 1)
}

// AllowedAtSite is the static legality check used during random seeding:
// a destination is legal if it is a surface, or if it has no active
// near-neighbors (nNeighbors[0] == 0; farther levels are not checked)
// (spec.md §4.4).
func (r *DiffusionReaction) AllowedAtSite(l *Lattice) bool {
	dst := l.SiteAt(r.Dst)
	return dst.State == Surface || dst.NNeighbors[0] == 0
}

// CalcRate evaluates rate = linearRateScale * exp(-beta*(E_src - Esp))
// (spec.md §4.2).
func (r *DiffusionReaction) CalcRate(l *Lattice) error {
	src := l.SiteAt(r.Src)
	esp, err := l.SaddleEnergy(r.Src, r.Dst)
	if err != nil {
		return err
	}
	r.lastUsedE = src.Energy
	r.lastUsedEsp = esp
	r.rate = l.RM.Rate(src.Energy, esp)
	return nil
}

// Execute deactivates Src then activates Dst; both calls drain their own
// affected-site queues, so no further bookkeeping is needed here
// (spec.md §4.4).
func (r *DiffusionReaction) Execute(l *Lattice) error {
	if err := l.Deactivate(r.Src); err != nil {
		return err
	}
	return l.Activate(r.Dst)
}

// Rate returns the value last computed by CalcRate.
func (r *DiffusionReaction) Rate() float64 {
	return r.rate
}

// LastUsed returns the site energy and saddle energy used in the most
// recent CalcRate call (spec.md P6: stability of these across repeated
// calls with no intervening activation).
func (r *DiffusionReaction) LastUsed() (energy, saddleEnergy float64) {
	return r.lastUsedE, r.lastUsedEsp
}
