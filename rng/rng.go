// Package rng wraps the single RNG collaborator the solver draws from
// (spec.md §6), following the rand.New(rand.NewSource(seed)) idiom used
// throughout pthm-soup (game/game.go, systems/particle_resource.go,
// systems/noise.go).
package rng

import (
	"math/rand"
	"time"
)

// Source is the minimal RNG capability the lattice/solver need: a
// uniform draw in [0,1) for reaction selection and step timing, and a
// standard-normal draw for any Gaussian-distributed initialization
// (spec.md §6).
type Source interface {
	Uniform() float64
	Normal() float64
}

// Generator is the concrete Source backing production runs.
type Generator struct {
	r *rand.Rand
}

// SeedType selects how a Generator's seed is chosen (spec.md §6/§7).
type SeedType string

const (
	// FromTime seeds from the current time, for non-reproducible runs.
	FromTime SeedType = "time"
	// Specific seeds from a caller-supplied value, for reproducible runs.
	Specific SeedType = "specific"
)

// New builds a Generator per seedType: FromTime ignores seed and draws
// one from the wall clock; Specific uses seed as given.
func New(seedType SeedType, seed int64) *Generator {
	if seedType == FromTime {
		seed = time.Now().UnixNano()
	}
	return &Generator{r: rand.New(rand.NewSource(seed))}
}

// NewFromSeed is a convenience constructor for the common reproducible
// case (spec.md S1-S6's "seeded scenarios").
func NewFromSeed(seed int64) *Generator {
	return New(Specific, seed)
}

func (g *Generator) Uniform() float64 { return g.r.Float64() }
func (g *Generator) Normal() float64  { return g.r.NormFloat64() }
