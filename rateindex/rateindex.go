// Package rateindex builds the flat cumulative-rate table the solver
// draws from on every kMC step (spec.md §4.5).
package rateindex

import (
	"sort"

	"github.com/joebradly/kMC/lattice"
	"gonum.org/v1/gonum/floats"
)

// RateIndex is the cumulative-rate vector used for weighted reaction
// selection. It is rebuilt from scratch once per step, in row-major
// site order and, within a site, in stored ActiveReactions order
// (original_source/src/libs/kmcsolver.cpp getRateVariables).
type RateIndex struct {
	AllReactions []lattice.Reaction
	AccuAllRates []float64

	// KTot is the total rate, the last (and largest) entry of
	// AccuAllRates, or zero when no reaction is active.
	KTot float64
}

// Rebuild walks every site of l in index order and appends its active
// reactions and their rates, accumulating a running sum as it goes.
func (ri *RateIndex) Rebuild(l *lattice.Lattice) {
	ri.AllReactions = ri.AllReactions[:0]
	ri.AccuAllRates = ri.AccuAllRates[:0]

	l.ForEachSite(func(_ int, s *lattice.Site) {
		for _, r := range s.ActiveReactions {
			ri.AllReactions = append(ri.AllReactions, r)
			ri.AccuAllRates = append(ri.AccuAllRates, r.Rate())
		}
	})

	if len(ri.AccuAllRates) == 0 {
		ri.KTot = 0
		return
	}

	floats.CumSum(ri.AccuAllRates, ri.AccuAllRates)
	ri.KTot = ri.AccuAllRates[len(ri.AccuAllRates)-1]
}

// Select returns the index of the first reaction whose cumulative rate
// is >= R (spec.md P5), via sort.Search's "smallest index for which f
// is true" semantics — the idiomatic stdlib stand-in for the original's
// hand-rolled binary search.
func (ri *RateIndex) Select(R float64) int {
	return sort.Search(len(ri.AccuAllRates), func(i int) bool {
		return ri.AccuAllRates[i] >= R
	})
}

// Len reports how many reactions are currently indexed.
func (ri *RateIndex) Len() int {
	return len(ri.AllReactions)
}
