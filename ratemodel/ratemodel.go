// Package ratemodel implements the pair-potential energy tensor and the
// Arrhenius diffusion-rate formula used by the kMC reaction catalog.
package ratemodel

import (
	"math"

	"github.com/joebradly/kMC/geometry"
)

// RateModel holds the process-wide rate-model constants: the pair
// potential tensor over a site's neighborhood cube, plus the inverse
// temperature and attempt-frequency prefactor used in the Arrhenius rate.
type RateModel struct {
	RPower          float64
	Scale           float64
	Beta            float64
	LinearRateScale float64

	l         int
	nhl       int
	potential []float64 // flattened NHL^3, same (i,j,k) layout as geometry's level matrix
}

// New builds the potential tensor for geo's neighborhood cube:
// potential[i,j,k] = scale * (dx^2+dy^2+dz^2)^(-rPower/2), center = 0.
func New(geo *geometry.Geometry, rPower, scale, beta, linearRateScale float64) *RateModel {
	nhl := geo.NHL
	pot := make([]float64, nhl*nhl*nhl)

	for i := 0; i < nhl; i++ {
		for j := 0; j < nhl; j++ {
			for k := 0; k < nhl; k++ {
				idx := (i*nhl+j)*nhl + k
				if i == geo.L && j == geo.L && k == geo.L {
					pot[idx] = 0
					continue
				}
				dx := float64(geo.OriginTransform(i))
				dy := float64(geo.OriginTransform(j))
				dz := float64(geo.OriginTransform(k))
				r2 := dx*dx + dy*dy + dz*dz
				pot[idx] = scale * math.Pow(r2, -rPower/2)
			}
		}
	}

	return &RateModel{
		RPower:          rPower,
		Scale:           scale,
		Beta:            beta,
		LinearRateScale: linearRateScale,
		l:               geo.L,
		nhl:             nhl,
		potential:       pot,
	}
}

// Potential looks up the precomputed pair potential at cube-local index
// (i, j, k), each in [0, NHL).
func (rm *RateModel) Potential(i, j, k int) float64 {
	return rm.potential[(i*rm.nhl+j)*rm.nhl+k]
}

// PotentialAtOffset looks up the pair potential for a signed neighborhood
// offset (dx, dy, dz), translating it into the tensor's cube-local indices.
func (rm *RateModel) PotentialAtOffset(dx, dy, dz int) float64 {
	return rm.Potential(dx+rm.l, dy+rm.l, dz+rm.l)
}

// SaddleTerm evaluates scale/r^rPower for a single active site at
// minimum-image distance r from a hop's saddle point (spec.md §4.2).
func (rm *RateModel) SaddleTerm(r float64) float64 {
	return rm.Scale / math.Pow(r, rm.RPower)
}

// Rate evaluates the Arrhenius diffusion rate for a hop whose source site
// has the given energy and whose saddle point has the given saddle energy.
func (rm *RateModel) Rate(srcEnergy, saddleEnergy float64) float64 {
	return rm.LinearRateScale * math.Exp(-rm.Beta*(srcEnergy-saddleEnergy))
}
