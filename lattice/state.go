package lattice

// ParticleState is a site's discrete particle state (spec.md §3, §4.3).
type ParticleState int

const (
	Solution ParticleState = iota
	Surface
	Crystal
)

func (s ParticleState) String() string {
	switch s {
	case Solution:
		return "solution"
	case Surface:
		return "surface"
	case Crystal:
		return "crystal"
	default:
		return "unknown"
	}
}

// ShortCode returns the XYZ-dump letter for a state (spec.md §6):
// crystal=C, solution=P, surface=S.
func (s ParticleState) ShortCode() string {
	switch s {
	case Crystal:
		return "C"
	case Solution:
		return "P"
	case Surface:
		return "S"
	default:
		return "?"
	}
}
