package eclipse

import "fmt"

// Grid couples a corner-point geometry with named per-cell parameter
// fields (velocities, density, and any extras the caller resamples).
type Grid struct {
	geom   *Geometry
	params map[string][]float64
}

// NewGrid returns a grid over geom with no parameters attached.
func NewGrid(geom *Geometry) *Grid {
	return &Grid{
		geom:   geom,
		params: make(map[string][]float64),
	}
}

// Geometry returns the corner-point structure.
func (g *Grid) Geometry() *Geometry { return g.geom }

// AddParameter registers a named per-cell field, zero-initialised.
func (g *Grid) AddParameter(name string) {
	ni, nj, nk := g.geom.NI(), g.geom.NJ(), g.geom.NK()
	g.params[name] = make([]float64, ni*nj*nk)
}

// HasParameter reports whether the named field exists.
func (g *Grid) HasParameter(name string) bool {
	_, ok := g.params[name]
	return ok
}

// GetParameter returns a copy of the named field as a dense
// (ni, nj, nk) cell grid. Regridding mutates its working copy, so the
// stored field stays pristine.
func (g *Grid) GetParameter(name string) ([]float64, error) {
	p, ok := g.params[name]
	if !ok {
		return nil, fmt.Errorf("parameter %s is not found in Eclipse grid", name)
	}
	cp := make([]float64, len(p))
	copy(cp, p)
	return cp, nil
}

// SetParameterValue stores v for cell (i, j, k) of the named field.
func (g *Grid) SetParameterValue(name string, i, j, k int, v float64) {
	g.params[name][g.geom.cellIndex(i, j, k)] = v
}

// ParameterValue returns the named field's value at cell (i, j, k).
func (g *Grid) ParameterValue(name string, i, j, k int) float64 {
	return g.params[name][g.geom.cellIndex(i, j, k)]
}

// CellIndex returns the dense index of cell (i, j, k) into parameter
// slices returned by GetParameter.
func (g *Grid) CellIndex(i, j, k int) int {
	return g.geom.cellIndex(i, j, k)
}

// BuildBoxGrid constructs a rectangular corner-point grid with uniform
// (dx, dy) cells at origin (x0, y0) and layer interfaces given by
// layerZ(i, j, k) for k = 0..nk. All cells are active. Intended for
// tests and synthetic models.
func BuildBoxGrid(x0, y0, dx, dy float64, ni, nj, nk int, layerZ func(i, j, k int) float64) *Grid {
	geom := NewGeometry(ni, nj, nk)
	for i := 0; i <= ni; i++ {
		for j := 0; j <= nj; j++ {
			geom.SetPillar(i, j, x0+float64(i)*dx, y0+float64(j)*dy)
		}
	}
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			for k := 0; k < nk; k++ {
				geom.SetActive(i, j, k, true)
				for b := 0; b < 2; b++ {
					for a := 0; a < 2; a++ {
						geom.SetCornerDepth(i, j, k, a, b, 0, layerZ(i+a, j+b, k))
						geom.SetCornerDepth(i, j, k, a, b, 1, layerZ(i+a, j+b, k+1))
					}
				}
			}
		}
	}
	return NewGrid(geom)
}
