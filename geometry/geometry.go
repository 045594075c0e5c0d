// Package geometry implements the periodic lattice topology shared by the
// rest of the kMC core: coordinate wrapping, minimum-image distance, and
// the neighborhood/level bookkeeping used to build per-site energy and
// reaction tables.
package geometry

// Offset describes one cell of a site's neighborhood cube relative to the
// site itself, together with its Chebyshev level.
type Offset struct {
	DX, DY, DZ int
	Level      int
}

// Geometry holds the process-wide lattice dimensions and the neighborhood
// constants derived from nNeighborsLimit. It is a value owned by a single
// Lattice/Solver instance — see spec.md §5 on avoiding shared globals.
type Geometry struct {
	NX, NY, NZ int
	L          int // nNeighborsLimit
	NHL        int // neighborhoodLength = 2L+1

	// originTransform[i] = i - L, for i in [0, NHL).
	originTransform []int

	// levelMatrix[i][j][k] = max(|i-L|,|j-L|,|k-L|) - 1, flattened in
	// row-major (i,j,k) order. The center cell holds the sentinel L+1.
	levelMatrix []int
}

// New builds the geometry for an NX x NY x NZ periodic box with the given
// Chebyshev neighborhood radius L.
func New(nx, ny, nz, l int) *Geometry {
	nhl := 2*l + 1

	origin := make([]int, nhl)
	for i := range origin {
		origin[i] = i - l
	}

	levels := make([]int, nhl*nhl*nhl)
	for i := 0; i < nhl; i++ {
		for j := 0; j < nhl; j++ {
			for k := 0; k < nhl; k++ {
				idx := (i*nhl+j)*nhl + k
				if i == l && j == l && k == l {
					levels[idx] = l + 1
					continue
				}
				levels[idx] = findLevel(abs(origin[i]), abs(origin[j]), abs(origin[k]))
			}
		}
	}

	return &Geometry{
		NX:              nx,
		NY:              ny,
		NZ:              nz,
		L:               l,
		NHL:             nhl,
		originTransform: origin,
		levelMatrix:     levels,
	}
}

func findLevel(i, j, k int) int {
	m := i
	if j > m {
		m = j
	}
	if k > m {
		m = k
	}
	return m - 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// OriginTransform returns the value i-L used to translate a neighborhood
// cube index into a signed lattice offset.
func (g *Geometry) OriginTransform(i int) int {
	return g.originTransform[i]
}

// Level returns the precomputed Chebyshev level of cube-local index
// (i, j, k), each in [0, NHL). The center returns the sentinel L+1.
func (g *Geometry) Level(i, j, k int) int {
	return g.levelMatrix[(i*g.NHL+j)*g.NHL+k]
}

// Wrap reduces a coordinate (which may be negative or >= n) into [0, n).
func Wrap(c, n int) int {
	c %= n
	if c < 0 {
		c += n
	}
	return c
}

// WrapCoords wraps a full (x, y, z) coordinate into the box.
func (g *Geometry) WrapCoords(x, y, z int) (int, int, int) {
	return Wrap(x, g.NX), Wrap(y, g.NY), Wrap(z, g.NZ)
}

// Index flattens a (wrapped) coordinate into the row-major site slice index.
func (g *Geometry) Index(x, y, z int) int {
	x, y, z = g.WrapCoords(x, y, z)
	return (x*g.NY+y)*g.NZ + z
}

// Coords recovers the (x, y, z) coordinate of a flat site index.
func (g *Geometry) Coords(index int) (x, y, z int) {
	z = index % g.NZ
	index /= g.NZ
	y = index % g.NY
	x = index / g.NY
	return x, y, z
}

// NumSites returns NX*NY*NZ.
func (g *Geometry) NumSites() int {
	return g.NX * g.NY * g.NZ
}

// Delta1D computes the signed shortest displacement from a to b along a
// single periodic axis of length n: d = (b-a+n) mod n, folded into
// (-n/2, n/2]. Per spec.md §4.1, the |d| = n/2 boundary is resolved by
// keeping the positive representative, which is what the single ">" test
// below already does (d is non-negative before the fold).
func Delta1D(a, b, n int) int {
	d := Wrap(b-a, n)
	if d > n/2 {
		d -= n
	}
	return d
}

// Delta computes the minimum-image (dx, dy, dz) from (ax,ay,az) to (bx,by,bz).
func (g *Geometry) Delta(ax, ay, az, bx, by, bz int) (dx, dy, dz int) {
	dx = Delta1D(ax, bx, g.NX)
	dy = Delta1D(ay, by, g.NY)
	dz = Delta1D(az, bz, g.NZ)
	return dx, dy, dz
}

// NeighborOffsets enumerates every cell of the full (2L+1)^3 neighborhood
// cube except the center, each tagged with its Chebyshev level.
func (g *Geometry) NeighborOffsets() []Offset {
	offsets := make([]Offset, 0, g.NHL*g.NHL*g.NHL-1)
	for i := 0; i < g.NHL; i++ {
		for j := 0; j < g.NHL; j++ {
			for k := 0; k < g.NHL; k++ {
				if i == g.L && j == g.L && k == g.L {
					continue
				}
				offsets = append(offsets, Offset{
					DX:    g.originTransform[i],
					DY:    g.originTransform[j],
					DZ:    g.originTransform[k],
					Level: g.Level(i, j, k),
				})
			}
		}
	}
	return offsets
}

// Near26Offsets enumerates the 26 cells of the 3x3x3 near-neighborhood
// (Chebyshev distance <= 1), excluding the center. This is independent of
// L: the general core's diffusion reactions always hop to one of these 26
// directions (spec.md §4.4).
func Near26Offsets() []Offset {
	offsets := make([]Offset, 0, 26)
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			for dk := -1; dk <= 1; dk++ {
				if di == 0 && dj == 0 && dk == 0 {
					continue
				}
				offsets = append(offsets, Offset{DX: di, DY: dj, DZ: dk, Level: 0})
			}
		}
	}
	return offsets
}
