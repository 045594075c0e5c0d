// Package boundary implements the lattice edge conditions of spec.md
// §4.1 (C7). Periodic is the only boundary the solver ships with
// fully wired up; ConcentrationWall is carried across from
// original_source/src/boundary/concentrationwall as a skeleton — the
// original left it largely unimplemented too.
package boundary

import (
	"errors"
	"fmt"

	"github.com/joebradly/kMC/geometry"
)

// ErrNotImplemented is returned by boundary kinds that are declared but
// not wired into the step loop, mirroring the original's skeletal
// ConcentrationWall (original_source/src/boundary/concentrationwall/concentrationwall.h).
var ErrNotImplemented = errors.New("boundary: not implemented")

// Boundary is one axis-face's edge condition (original_source's
// Boundary base class, grounded on boundary.cpp).
type Boundary interface {
	// Initialize prepares any boundary-local bookkeeping once the
	// lattice geometry is known.
	Initialize(geo *geometry.Geometry) error

	// Update refreshes boundary-local bookkeeping after a step; a pure
	// Periodic boundary never has anything to do here.
	Update() error

	// Kind names the boundary type for IsCompatible and logging.
	Kind() string
}

// IsCompatible reports whether two boundary kinds may appear together
// on opposite faces of the same axis. A periodic face may only pair
// with another periodic face (original_source/src/libs/boundary/boundary.cpp
// Boundary::isCompatible).
func IsCompatible(a, b Boundary) bool {
	return isCompatibleKind(a.Kind(), b.Kind()) && isCompatibleKind(b.Kind(), a.Kind())
}

func isCompatibleKind(k1, k2 string) bool {
	return !(k1 == periodicKind && k2 != periodicKind)
}

const periodicKind = "periodic"

// Periodic is the fully functional boundary kind: the lattice wraps on
// every axis, so there is nothing to update or initialize beyond what
// geometry.Geometry already does (spec.md's only required boundary).
type Periodic struct{}

func (Periodic) Initialize(*geometry.Geometry) error { return nil }
func (Periodic) Update() error                       { return nil }
func (Periodic) Kind() string                        { return periodicKind }

// ConcentrationWall records an axis, a face and a minimum distance from
// the surface, but does not hold a concentration or reject crystal growth.
// It is carried across as a skeleton matching the original's own
// incomplete implementation; no SPEC_FULL.md component currently drives
// it, so Initialize and Update report ErrNotImplemented rather than
// silently behaving like Periodic.
type ConcentrationWall struct {
	Dimension   int
	Orientation int

	minDistanceFromSurface int
}

// NewConcentrationWall constructs a wall on the given axis (0=x,1=y,2=z)
// and face (0=low, 1=high), mirroring the original constructor's
// (dimension, orientation) pair.
func NewConcentrationWall(dimension, orientation int) *ConcentrationWall {
	return &ConcentrationWall{Dimension: dimension, Orientation: orientation}
}

// SetMinDistanceFromSite matches the original's setter name-for-name
// (original_source/.../concentrationwall.h setMinDistanceFromSite).
func (w *ConcentrationWall) SetMinDistanceFromSite(d int) {
	w.minDistanceFromSurface = d
}

func (w *ConcentrationWall) Initialize(*geometry.Geometry) error {
	return fmt.Errorf("concentration wall on axis %d face %d: %w", w.Dimension, w.Orientation, ErrNotImplemented)
}

func (w *ConcentrationWall) Update() error {
	return ErrNotImplemented
}

func (w *ConcentrationWall) Kind() string { return "concentration-wall" }
