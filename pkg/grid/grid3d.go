package grid

import (
	"math"

	"seisforward/pkg/geometry"
)

// Volume is a rotated rectangular area with a depth span. The rectangle
// has corner (X0, Y0), side lengths LX and LY, and is rotated Angle
// radians about the corner.
type Volume struct {
	X0, Y0     float64
	LX, LY     float64
	Angle      float64
	ZMin, ZMax float64
}

// Grid3D is a dense (nx, ny, nk) grid of float64 samples laid out on a
// rotated volume. The k axis is structural (reflector index), not a
// regular depth sampling.
type Grid3D struct {
	vol        Volume
	nx, ny, nk int
	dx, dy     float64
	data       []float64
}

// NewGrid3D returns an (nx, ny, nk) grid over vol with all samples set
// to val.
func NewGrid3D(vol Volume, nx, ny, nk int, val float64) *Grid3D {
	g := &Grid3D{
		vol:  vol,
		nx:   nx,
		ny:   ny,
		nk:   nk,
		dx:   vol.LX / float64(nx),
		dy:   vol.LY / float64(ny),
		data: make([]float64, nx*ny*nk),
	}
	if val != 0 {
		for i := range g.data {
			g.data[i] = val
		}
	}
	return g
}

// NX returns the number of cells along the rotated x axis.
func (g *Grid3D) NX() int { return g.nx }

// NY returns the number of cells along the rotated y axis.
func (g *Grid3D) NY() int { return g.ny }

// NK returns the number of layers.
func (g *Grid3D) NK() int { return g.nk }

// DX returns the cell size along the rotated x axis.
func (g *Grid3D) DX() float64 { return g.dx }

// DY returns the cell size along the rotated y axis.
func (g *Grid3D) DY() float64 { return g.dy }

// Angle returns the rotation angle in radians.
func (g *Grid3D) Angle() float64 { return g.vol.Angle }

// XMin returns the x coordinate of the grid origin corner.
func (g *Grid3D) XMin() float64 { return g.vol.X0 }

// YMin returns the y coordinate of the grid origin corner.
func (g *Grid3D) YMin() float64 { return g.vol.Y0 }

// Vol returns the rotated volume the grid covers.
func (g *Grid3D) Vol() Volume { return g.vol }

// Get returns the sample at (i, j, k).
func (g *Grid3D) Get(i, j, k int) float64 {
	return g.data[(i*g.ny+j)*g.nk+k]
}

// Set stores v at (i, j, k).
func (g *Grid3D) Set(i, j, k int, v float64) {
	g.data[(i*g.ny+j)*g.nk+k] = v
}

// Data exposes the backing slice.
func (g *Grid3D) Data() []float64 { return g.data }

// FindCenterOfCell returns the unrotated world coordinates of the centre
// of cell (i, j) and the relative depth of layer k within the volume's
// z span.
func (g *Grid3D) FindCenterOfCell(i, j, k int) (x, y, z float64) {
	xl := (float64(i) + 0.5) * g.dx
	yl := (float64(j) + 0.5) * g.dy
	c := math.Cos(g.vol.Angle)
	s := math.Sin(g.vol.Angle)
	x = g.vol.X0 + xl*c - yl*s
	y = g.vol.Y0 + xl*s + yl*c
	z = g.vol.ZMin + (float64(k)+0.5)*(g.vol.ZMax-g.vol.ZMin)/float64(g.nk)
	return x, y, z
}

// FindIndex maps world coordinates to the cell containing them. The
// second result is false outside the grid.
func (g *Grid3D) FindIndex(x, y float64) (i, j int, ok bool) {
	xl, yl := g.toLocal(x, y)
	if xl < 0 || yl < 0 || xl >= g.vol.LX || yl >= g.vol.LY {
		return 0, 0, false
	}
	i = int(xl / g.dx)
	j = int(yl / g.dy)
	if i >= g.nx {
		i = g.nx - 1
	}
	if j >= g.ny {
		j = g.ny - 1
	}
	return i, j, true
}

// IsInside reports whether the world point (x, y) falls inside the
// rotated footprint of the grid.
func (g *Grid3D) IsInside(x, y float64) bool {
	xl, yl := g.toLocal(x, y)
	return xl >= 0 && yl >= 0 && xl <= g.vol.LX && yl <= g.vol.LY
}

func (g *Grid3D) toLocal(x, y float64) (xl, yl float64) {
	dx := x - g.vol.X0
	dy := y - g.vol.Y0
	c := math.Cos(g.vol.Angle)
	s := math.Sin(g.vol.Angle)
	return dx*c + dy*s, dy*c - dx*s
}

// RotatedMin returns the origin corner expressed in the rotated frame,
// the reference the regridder measures rotated bounding boxes against.
func (g *Grid3D) RotatedMin() (xr, yr float64) {
	return geometry.RotateXY(g.vol.X0, g.vol.Y0, g.vol.Angle)
}
