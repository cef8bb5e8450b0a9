// Package model holds the session state of a forward-modelling run: the
// output geometry, the regular property grids produced by regridding,
// derived surfaces, and the column-level quantities (Vrms, reflection
// series, NMO axes) trace synthesis consumes.
package model

import (
	"math"

	"seisforward/pkg/grid"
)

// SeismicGeometry describes the rotated output grid: the survey
// rectangle, sampling steps and the derived z and t ranges.
type SeismicGeometry struct {
	x0, y0 float64
	lx, ly float64
	angle  float64

	dx, dy, dz, dt float64

	zMin, zMax float64
	tMin, tMax float64
	nt         int

	zReflectorCount int
}

// NewSeismicGeometry returns a geometry with the given sampling steps.
func NewSeismicGeometry(dx, dy, dz, dt float64) *SeismicGeometry {
	return &SeismicGeometry{dx: dx, dy: dy, dz: dz, dt: dt}
}

// SetArea places the rotated survey rectangle.
func (g *SeismicGeometry) SetArea(x0, y0, lx, ly, angle float64) {
	g.x0, g.y0, g.lx, g.ly, g.angle = x0, y0, lx, ly, angle
}

// SetZRange sets the depth span of the output volume.
func (g *SeismicGeometry) SetZRange(zMin, zMax float64) {
	g.zMin, g.zMax = zMin, zMax
}

// SetTRange sets the time span of the output traces.
func (g *SeismicGeometry) SetTRange(tMin, tMax float64) {
	g.tMin, g.tMax = tMin, tMax
}

// SetNt fixes the trace sample count.
func (g *SeismicGeometry) SetNt(nt int) { g.nt = nt }

// SetZReflectorCount stores the number of reflector layers carried by
// the structural grids.
func (g *SeismicGeometry) SetZReflectorCount(n int) { g.zReflectorCount = n }

// X0 returns the x coordinate of the rotation corner.
func (g *SeismicGeometry) X0() float64 { return g.x0 }

// Y0 returns the y coordinate of the rotation corner.
func (g *SeismicGeometry) Y0() float64 { return g.y0 }

// LX returns the rectangle length along the rotated x axis.
func (g *SeismicGeometry) LX() float64 { return g.lx }

// LY returns the rectangle length along the rotated y axis.
func (g *SeismicGeometry) LY() float64 { return g.ly }

// Angle returns the rotation in radians.
func (g *SeismicGeometry) Angle() float64 { return g.angle }

// DX returns the trace spacing along x in metres.
func (g *SeismicGeometry) DX() float64 { return g.dx }

// DY returns the trace spacing along y in metres.
func (g *SeismicGeometry) DY() float64 { return g.dy }

// DZ returns the depth sample interval in metres.
func (g *SeismicGeometry) DZ() float64 { return g.dz }

// DT returns the time sample interval in milliseconds.
func (g *SeismicGeometry) DT() float64 { return g.dt }

// NX returns the trace count along x.
func (g *SeismicGeometry) NX() int { return int(math.Ceil(g.lx / g.dx)) }

// NY returns the trace count along y.
func (g *SeismicGeometry) NY() int { return int(math.Ceil(g.ly / g.dy)) }

// NZ returns the depth sample count.
func (g *SeismicGeometry) NZ() int { return int(math.Ceil((g.zMax - g.zMin) / g.dz)) }

// NT returns the time sample count.
func (g *SeismicGeometry) NT() int { return g.nt }

// Z0 returns the top of the depth range.
func (g *SeismicGeometry) Z0() float64 { return g.zMin }

// ZMax returns the bottom of the depth range.
func (g *SeismicGeometry) ZMax() float64 { return g.zMax }

// T0 returns the start of the time range in ms.
func (g *SeismicGeometry) T0() float64 { return g.tMin }

// TMax returns the end of the time range in ms.
func (g *SeismicGeometry) TMax() float64 { return g.tMax }

// ZReflectorCount returns the number of reflector layers.
func (g *SeismicGeometry) ZReflectorCount() int { return g.zReflectorCount }

// CreateDepthVolume returns the rotated volume spanned by the geometry.
func (g *SeismicGeometry) CreateDepthVolume() grid.Volume {
	return grid.Volume{
		X0:    g.x0,
		Y0:    g.y0,
		LX:    g.lx,
		LY:    g.ly,
		Angle: g.angle,
		ZMin:  g.zMin,
		ZMax:  g.zMax,
	}
}

// SnapTimeRange rounds tMin to the nearest dt multiple and recomputes nt the
// way the trace axis expects: nt = round((tMax-tMin)/dt) + 1.
func (g *SeismicGeometry) SnapTimeRange(tMin, tMax float64) {
	ns := math.Floor(tMin/g.dt + 0.5)
	g.tMin = ns * g.dt
	g.tMax = tMax
	g.nt = int(math.Floor((tMax-g.tMin)/g.dt+0.5)) + 1
}
