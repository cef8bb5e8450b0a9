// Package eclipse implements an in-memory corner-point reservoir grid:
// vertical pillars on an (ni+1, nj+1) lattice, hexahedral cells with
// eight corner depths, per-cell activity and named cell parameters.
package eclipse

import (
	"math"

	"seisforward/pkg/geometry"
	"seisforward/pkg/grid"
)

// Geometry holds the corner-point structure of a grid: pillar positions,
// corner depths and activity flags.
type Geometry struct {
	ni, nj, nk int

	// pillarX/pillarY are (ni+1)*(nj+1) lattice coordinates; pillars
	// are vertical.
	pillarX, pillarY []float64
	pillarActive     []bool

	// zcorn holds 8 corner depths per cell, indexed by (a, b, c) in
	// {0,1}^3 where c=0 is the top face.
	zcorn  []float64
	active []bool
}

// NewGeometry returns an (ni, nj, nk) corner-point geometry with all
// pillars active and all cells inactive.
func NewGeometry(ni, nj, nk int) *Geometry {
	g := &Geometry{
		ni:           ni,
		nj:           nj,
		nk:           nk,
		pillarX:      make([]float64, (ni+1)*(nj+1)),
		pillarY:      make([]float64, (ni+1)*(nj+1)),
		pillarActive: make([]bool, (ni+1)*(nj+1)),
		zcorn:        make([]float64, ni*nj*nk*8),
		active:       make([]bool, ni*nj*nk),
	}
	for i := range g.pillarActive {
		g.pillarActive[i] = true
	}
	return g
}

// NI returns the cell count along i.
func (g *Geometry) NI() int { return g.ni }

// NJ returns the cell count along j.
func (g *Geometry) NJ() int { return g.nj }

// NK returns the layer count.
func (g *Geometry) NK() int { return g.nk }

func (g *Geometry) pillarIndex(i, j int) int { return i*(g.nj+1) + j }

func (g *Geometry) cellIndex(i, j, k int) int { return (i*g.nj+j)*g.nk + k }

func (g *Geometry) cornerIndex(i, j, k, a, b, c int) int {
	return g.cellIndex(i, j, k)*8 + (c*2+b)*2 + a
}

// SetPillar places pillar (i, j) at world coordinates (x, y).
func (g *Geometry) SetPillar(i, j int, x, y float64) {
	idx := g.pillarIndex(i, j)
	g.pillarX[idx] = x
	g.pillarY[idx] = y
}

// SetPillarActive marks pillar (i, j) usable for interpolation.
func (g *Geometry) SetPillarActive(i, j int, active bool) {
	g.pillarActive[g.pillarIndex(i, j)] = active
}

// IsPillarActive reports whether pillar (i, j) is active. Out-of-range
// pillars are inactive.
func (g *Geometry) IsPillarActive(i, j int) bool {
	if i < 0 || j < 0 || i > g.ni || j > g.nj {
		return false
	}
	return g.pillarActive[g.pillarIndex(i, j)]
}

// SetActive flags cell (i, j, k).
func (g *Geometry) SetActive(i, j, k int, active bool) {
	g.active[g.cellIndex(i, j, k)] = active
}

// IsActive reports whether cell (i, j, k) holds live data.
func (g *Geometry) IsActive(i, j, k int) bool {
	if i < 0 || j < 0 || k < 0 || i >= g.ni || j >= g.nj || k >= g.nk {
		return false
	}
	return g.active[g.cellIndex(i, j, k)]
}

// SetCornerDepth stores the depth of cell (i, j, k)'s corner (a, b, c),
// a/b selecting the pillar offset and c the top (0) or bottom (1) face.
func (g *Geometry) SetCornerDepth(i, j, k, a, b, c int, z float64) {
	g.zcorn[g.cornerIndex(i, j, k, a, b, c)] = z
}

// FindCornerPoint returns the world position of the (a, b, c) corner of
// cell (i, j, k).
func (g *Geometry) FindCornerPoint(i, j, k, a, b, c int) geometry.Point {
	pidx := g.pillarIndex(i+a, j+b)
	return geometry.Point{
		X: g.pillarX[pidx],
		Y: g.pillarY[pidx],
		Z: g.zcorn[g.cornerIndex(i, j, k, a, b, c)],
	}
}

// FindCellCenterPoint returns the mean of the eight corner points of
// cell (i, j, k).
func (g *Geometry) FindCellCenterPoint(i, j, k int) geometry.Point {
	var sum geometry.Point
	for c := 0; c < 2; c++ {
		for b := 0; b < 2; b++ {
			for a := 0; a < 2; a++ {
				sum = sum.Add(g.FindCornerPoint(i, j, k, a, b, c))
			}
		}
	}
	return sum.Scale(1.0 / 8.0)
}

// GetDZ returns the mean thickness of cell (i, j, k): bottom-face mean
// depth minus top-face mean depth.
func (g *Geometry) GetDZ(i, j, k int) float64 {
	top, bot := 0.0, 0.0
	for b := 0; b < 2; b++ {
		for a := 0; a < 2; a++ {
			top += g.zcorn[g.cornerIndex(i, j, k, a, b, 0)]
			bot += g.zcorn[g.cornerIndex(i, j, k, a, b, 1)]
		}
	}
	return (bot - top) / 4.0
}

// FindTopLayer returns the smallest k holding any active cell, or nk if
// the grid is empty.
func (g *Geometry) FindTopLayer() int {
	for k := 0; k < g.nk; k++ {
		for i := 0; i < g.ni; i++ {
			for j := 0; j < g.nj; j++ {
				if g.IsActive(i, j, k) {
					return k
				}
			}
		}
	}
	return g.nk
}

// FindBottomLayer returns the largest k holding any active cell, or -1
// if the grid is empty.
func (g *Geometry) FindBottomLayer() int {
	for k := g.nk - 1; k >= 0; k-- {
		for i := 0; i < g.ni; i++ {
			for j := 0; j < g.nj; j++ {
				if g.IsActive(i, j, k) {
					return k
				}
			}
		}
	}
	return -1
}

// FindEnclosingVolume returns an unrotated rectangle covering every
// pillar of the grid.
func (g *Geometry) FindEnclosingVolume() (x0, y0, lx, ly, angle float64) {
	xmin, ymin := math.Inf(1), math.Inf(1)
	xmax, ymax := math.Inf(-1), math.Inf(-1)
	for i := 0; i <= g.ni; i++ {
		for j := 0; j <= g.nj; j++ {
			idx := g.pillarIndex(i, j)
			x, y := g.pillarX[idx], g.pillarY[idx]
			xmin = math.Min(xmin, x)
			xmax = math.Max(xmax, x)
			ymin = math.Min(ymin, y)
			ymax = math.Max(ymax, y)
		}
	}
	return xmin, ymin, xmax - xmin, ymax - ymin, 0
}

// FindLayerSurface samples the k-layer face (lower = 0 for the top face,
// 1 for the bottom face) onto a regular raster. Each cell face is taken
// as the flat quad at its mean depth.
func (g *Geometry) FindLayerSurface(values *grid.Grid2D, k, lower int, dx, dy, x0, y0, angle float64) {
	g.sampleLayer(values, k, lower, dx, dy, x0, y0, angle, false)
}

// FindLayerSurfaceCornerpoint samples the k-layer face onto a regular
// raster using the true corner depths of each cell face.
func (g *Geometry) FindLayerSurfaceCornerpoint(values *grid.Grid2D, k, lower int, dx, dy, x0, y0, angle float64) {
	g.sampleLayer(values, k, lower, dx, dy, x0, y0, angle, true)
}

func (g *Geometry) sampleLayer(values *grid.Grid2D, k, lower int, dx, dy, x0, y0, angle float64, useCorner bool) {
	ni := values.NI()
	nj := values.NJ()
	covered := make([]bool, ni*nj)
	cosA := math.Cos(angle)
	sinA := math.Sin(angle)
	x0r, y0r := geometry.RotateXY(x0, y0, angle)

	nodeCenter := func(ii, jj int) (float64, float64) {
		xl := (float64(ii) + 0.5) * dx
		yl := (float64(jj) + 0.5) * dy
		return x0 + xl*cosA - yl*sinA, y0 + xl*sinA + yl*cosA
	}

	for i := 0; i < g.ni; i++ {
		for j := 0; j < g.nj; j++ {
			if !g.IsActive(i, j, k) {
				continue
			}
			p00 := g.FindCornerPoint(i, j, k, 0, 0, lower)
			p10 := g.FindCornerPoint(i, j, k, 1, 0, lower)
			p01 := g.FindCornerPoint(i, j, k, 0, 1, lower)
			p11 := g.FindCornerPoint(i, j, k, 1, 1, lower)
			if !useCorner {
				mean := (p00.Z + p10.Z + p01.Z + p11.Z) / 4.0
				p00.Z, p10.Z, p01.Z, p11.Z = mean, mean, mean, mean
			}

			var tri1, tri2 geometry.Triangle
			tri1.SetCornerPoints(p00, p10, p01)
			tri2.SetCornerPoints(p10, p11, p01)

			xmin, ymin, xmax, ymax := geometry.BoundingBoxRotated(
				[]geometry.Point{p00, p10, p01, p11}, angle)
			iiMin := int(math.Max(0, (xmin-x0r)/dx-1))
			jjMin := int(math.Max(0, (ymin-y0r)/dy-1))
			iiMax := int((xmax-x0r)/dx + 1)
			jjMax := int((ymax-y0r)/dy + 1)
			if iiMax > ni {
				iiMax = ni
			}
			if jjMax > nj {
				jjMax = nj
			}

			for ii := iiMin; ii < iiMax; ii++ {
				for jj := jjMin; jj < jjMax; jj++ {
					x, y := nodeCenter(ii, jj)
					line := geometry.NewVerticalLine(x, y, p00.Z-1000, 2000)
					if pt, ok := tri1.FindIntersection(line, false); ok {
						values.Set(ii, jj, pt.Z)
						covered[ii*nj+jj] = true
					} else if pt, ok := tri2.FindIntersection(line, false); ok {
						values.Set(ii, jj, pt.Z)
						covered[ii*nj+jj] = true
					}
				}
			}
		}
	}

	extrapolateUncovered(values, covered)
}

// extrapolateUncovered copies the nearest covered value into raster
// nodes no cell face reached, sweeping rows then columns in both
// directions. Margin nodes around the grid footprint end up holding the
// nearest edge value.
func extrapolateUncovered(values *grid.Grid2D, covered []bool) {
	ni := values.NI()
	nj := values.NJ()
	for pass := 0; pass < 2; pass++ {
		for i := 0; i < ni; i++ {
			for j := 1; j < nj; j++ {
				if !covered[i*nj+j] && covered[i*nj+j-1] {
					values.Set(i, j, values.Get(i, j-1))
					covered[i*nj+j] = true
				}
			}
			for j := nj - 2; j >= 0; j-- {
				if !covered[i*nj+j] && covered[i*nj+j+1] {
					values.Set(i, j, values.Get(i, j+1))
					covered[i*nj+j] = true
				}
			}
		}
		for j := 0; j < nj; j++ {
			for i := 1; i < ni; i++ {
				if !covered[i*nj+j] && covered[(i-1)*nj+j] {
					values.Set(i, j, values.Get(i-1, j))
					covered[i*nj+j] = true
				}
			}
			for i := ni - 2; i >= 0; i-- {
				if !covered[i*nj+j] && covered[(i+1)*nj+j] {
					values.Set(i, j, values.Get(i+1, j))
					covered[i*nj+j] = true
				}
			}
		}
	}
}
