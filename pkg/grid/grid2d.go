// Package grid holds the regular containers the engine samples onto: a
// plain 2D matrix, a rotated 3D cell grid and a 2D surface raster with
// bilinear lookup. The value Missing marks samples outside coverage.
package grid

// Missing is the sentinel for samples without data.
const Missing = -999.0

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool {
	return v == Missing
}

// Grid2D is a dense (ni, nj) matrix of float64 values.
type Grid2D struct {
	ni, nj int
	data   []float64
}

// NewGrid2D returns a (ni, nj) grid with every element set to val.
func NewGrid2D(ni, nj int, val float64) *Grid2D {
	g := &Grid2D{
		ni:   ni,
		nj:   nj,
		data: make([]float64, ni*nj),
	}
	if val != 0 {
		for i := range g.data {
			g.data[i] = val
		}
	}
	return g
}

// NI returns the number of rows (first index).
func (g *Grid2D) NI() int { return g.ni }

// NJ returns the number of columns (second index).
func (g *Grid2D) NJ() int { return g.nj }

// Get returns the element at (i, j).
func (g *Grid2D) Get(i, j int) float64 {
	return g.data[i*g.nj+j]
}

// Set stores v at (i, j).
func (g *Grid2D) Set(i, j int, v float64) {
	g.data[i*g.nj+j] = v
}

// Fill sets every element to v.
func (g *Grid2D) Fill(v float64) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Resize reallocates the grid to (ni, nj), zero-filled.
func (g *Grid2D) Resize(ni, nj int) {
	g.ni = ni
	g.nj = nj
	g.data = make([]float64, ni*nj)
}

// Data exposes the backing slice, row-major.
func (g *Grid2D) Data() []float64 { return g.data }
