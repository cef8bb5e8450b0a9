// Package regrid maps the corner-point reservoir grid onto the regular
// rotated output grid: reflector depths by layer-surface sampling,
// elastic properties by ray-drop through triangulated cell tops, and
// the travel-time grids derived from them. The heavy passes run
// block-parallel over disjoint regions of the output.
package regrid

import (
	"math"
	"sync"

	"seisforward/pkg/grid"
	"seisforward/pkg/model"
)

// FindZValues samples every reflector surface onto the z grid and, when
// requested, repairs negative layer thickness by clamping a reflector
// down to the one below it. Layers are processed concurrently; the
// repair sweeps columns bottom-up afterwards, from the deepest reflector
// upward.
func FindZValues(p *model.SeismicParameters, nThreads int) {
	zGrid := p.ZGrid()
	geom := p.EclipseGrid().Geometry()
	topK := p.TopK()
	useCorner := p.Settings().Regrid.UseCornerpointInterpol
	remNegDelta := p.Settings().Regrid.RemoveNegativeDeltaZ

	nx := zGrid.NX()
	ny := zGrid.NY()
	dx := zGrid.DX()
	dy := zGrid.DY()
	xMin := zGrid.XMin()
	yMin := zGrid.YMin()
	angle := zGrid.Angle()

	sample := func(values *grid.Grid2D, layer, face int) {
		if useCorner {
			geom.FindLayerSurfaceCornerpoint(values, layer, face, dx, dy, xMin, yMin, angle)
		} else {
			geom.FindLayerSurface(values, layer, face, dx, dy, xMin, yMin, angle)
		}
	}

	// Deepest reflector: the bottom face of the last layer.
	kBot := zGrid.NK() - 2
	values := grid.NewGrid2D(nx, ny, 0)
	sample(values, kBot+topK, 1)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			zGrid.Set(i, j, kBot+1, values.Get(i, j))
		}
	}

	// Remaining reflectors: top faces, one layer per task.
	runParallel(kBot+1, nThreads, func(idx int) {
		k := kBot - idx
		vals := grid.NewGrid2D(nx, ny, 0)
		sample(vals, k+topK, 0)
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				zGrid.Set(i, j, k, vals.Get(i, j))
			}
		}
	})

	if remNegDelta {
		runParallel(nx, nThreads, func(i int) {
			for j := 0; j < ny; j++ {
				for k := zGrid.NK() - 2; k >= 0; k-- {
					if zGrid.Get(i, j, k) > zGrid.Get(i, j, k+1) {
						zGrid.Set(i, j, k, zGrid.Get(i, j, k+1))
					}
				}
			}
		})
	}
}

// runParallel executes fn for indices 0..n-1 over at most nThreads
// workers. With one thread the calls stay on the caller's goroutine.
func runParallel(n, nThreads int, fn func(idx int)) {
	if nThreads <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	if nThreads > n {
		nThreads = n
	}
	var wg sync.WaitGroup
	chunk := (n + nThreads - 1) / nThreads
	for w := 0; w < nThreads; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// FillInGridValues pre-materialises the value-above rule on a working
// copy of an eclipse parameter: an inactive cell inherits the value
// above it when thinner than zlimit, keeps the overburden default when
// the cell above does, and takes the reservoir default otherwise. This
// removes cross-cell dependencies from the parallel ray-drop.
func FillInGridValues(p *model.SeismicParameters, gridCopy []float64, defaultValue, zlimit, defaultTop float64) {
	ecl := p.EclipseGrid()
	geom := ecl.Geometry()
	topK := p.TopK()
	botK := p.BottomK()

	for k := topK; k <= botK; k++ {
		for i := 0; i < geom.NI(); i++ {
			for j := 0; j < geom.NJ(); j++ {
				if geom.IsActive(i, j, k) {
					continue
				}
				idx := ecl.CellIndex(i, j, k)
				if k > 0 && k > topK {
					above := gridCopy[ecl.CellIndex(i, j, k-1)]
					switch {
					case geom.GetDZ(i, j, k) < zlimit:
						gridCopy[idx] = above
					case above == defaultTop:
						gridCopy[idx] = defaultTop
					default:
						gridCopy[idx] = defaultValue
					}
				} else {
					gridCopy[idx] = defaultTop
				}
			}
		}
	}
}

// snapTimeAxis pads the time surfaces by one wavelet length and derives
// the final time range and sample count from them.
func snapTimeAxis(p *model.SeismicParameters) {
	twtWavelet := p.TwtWavelet()
	p.TopTime().Add(-twtWavelet)
	p.BottomTime().Add(twtWavelet)

	tMin := p.TopTime().Min()
	tMax := p.BottomTime().Max()
	p.SeismicGeometry().SnapTimeRange(tMin, tMax)
}

// FindVrmsGrid fills the session's Vrms grid from a velocity grid and
// matching travel-time grid, column by column. Missing columns stay
// missing.
func FindVrmsGrid(p *model.SeismicParameters, vGrid, twtGrid *grid.Grid3D) {
	vrmsGrid := p.VrmsGrid()
	zGrid := p.ZGrid()
	vw := p.Settings().Water.Vw
	zw := p.Settings().Water.Zw
	twtW := 2000 * zw / vw

	for i := 0; i < vrmsGrid.NX(); i++ {
		for j := 0; j < vrmsGrid.NY(); j++ {
			if twtGrid.Get(i, j, 0) == grid.Missing {
				for k := 0; k < vrmsGrid.NK(); k++ {
					vrmsGrid.Set(i, j, k, grid.Missing)
				}
				continue
			}
			vOver := 2000 * (zGrid.Get(i, j, 0) - zw) / (twtGrid.Get(i, j, 0) - twtW)
			base := vw*vw*twtW + vOver*vOver*(twtGrid.Get(i, j, 0)-twtW)
			for k := 0; k < vrmsGrid.NK(); k++ {
				sum := base
				for l := 1; l <= k; l++ {
					v := vGrid.Get(i, j, l)
					sum += v * v * (twtGrid.Get(i, j, l) - twtGrid.Get(i, j, l-1))
				}
				vrmsGrid.Set(i, j, k, math.Sqrt(sum/twtGrid.Get(i, j, k)))
			}
		}
	}
}
