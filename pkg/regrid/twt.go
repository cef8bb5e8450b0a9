package regrid

import (
	"seisforward/pkg/grid"
	"seisforward/pkg/model"
)

// FindTWT builds the two-way-time grid column by column: the top
// reflector takes the top-time surface, deeper reflector k accumulates
// the interval travel time over dz = z[k]-z[k-1] at the velocities of
// elastic row k+1. PS runs add the one-way
// S leg; PS with NMO also maintains the separate PP and SS leg grids,
// split at the top so twtPP + twtSS = 2 twt with ratio a = 2. Columns
// without top-time coverage are marked missing throughout. The bottom
// travel time of each column is splatted into the bottom-time surface
// under the column's cell footprint.
func FindTWT(p *model.SeismicParameters, nThreads int) {
	vpGrid := p.VpGrid()
	vsGrid := p.VsGrid()
	zGrid := p.ZGrid()
	twtGrid := p.TwtGrid()
	twtPPGrid := p.TwtPPGrid()
	twtSSGrid := p.TwtSSGrid()
	topTime := p.TopTime()
	botTime := p.BottomTime()

	s := p.Settings()
	psSeis := s.Seismic.PSSeismic
	nmoSeis := s.Seismic.NMOCorr
	vw := s.Water.Vw
	zw := s.Water.Zw

	nk := twtGrid.NK()
	dx1 := vpGrid.DX()
	dy1 := vpGrid.DY()
	dx2 := botTime.DX()
	dy2 := botTime.DY()

	runParallel(vpGrid.NX(), nThreads, func(i int) {
		for j := 0; j < vpGrid.NY(); j++ {
			x, y, _ := vpGrid.FindCenterOfCell(i, j, 0)
			top := topTime.GetZ(x, y)
			twtGrid.Set(i, j, 0, top)
			if psSeis && nmoSeis {
				const a = 2.0
				twtPPGrid.Set(i, j, 0, 2/(a+1)*(top+1000*(a-1)*zw/vw))
				twtSSGrid.Set(i, j, 0, 2*top-twtPPGrid.Get(i, j, 0))
			}
			if topTime.IsMissing(top) {
				for k := 0; k < nk; k++ {
					twtGrid.Set(i, j, k, grid.Missing)
					if psSeis && nmoSeis {
						twtPPGrid.Set(i, j, k, grid.Missing)
						twtSSGrid.Set(i, j, k, grid.Missing)
					}
				}
				continue
			}

			for k := 1; k < nk; k++ {
				dz := zGrid.Get(i, j, k) - zGrid.Get(i, j, k-1)
				if psSeis {
					twtGrid.Set(i, j, k, twtGrid.Get(i, j, k-1)+
						1000*dz/vpGrid.Get(i, j, k+1)+1000*dz/vsGrid.Get(i, j, k+1))
				} else {
					twtGrid.Set(i, j, k, twtGrid.Get(i, j, k-1)+2000*dz/vpGrid.Get(i, j, k+1))
				}
				if psSeis && nmoSeis {
					twtPPGrid.Set(i, j, k, twtPPGrid.Get(i, j, k-1)+2000*dz/vpGrid.Get(i, j, k+1))
					twtSSGrid.Set(i, j, k, twtSSGrid.Get(i, j, k-1)+2000*dz/vsGrid.Get(i, j, k+1))
				}
			}

		}
	})

	// Splat each column's bottom time over its cell footprint. Kept
	// serial: neighbouring footprints overlap on the surface raster.
	for i := 0; i < vpGrid.NX(); i++ {
		for j := 0; j < vpGrid.NY(); j++ {
			if topTime.IsMissing(twtGrid.Get(i, j, 0)) {
				continue
			}
			x, y, _ := vpGrid.FindCenterOfCell(i, j, 0)
			bottom := twtGrid.Get(i, j, nk-1)
			for xs := x - dx1; xs < x+dx1; xs += dx2 {
				for ys := y - dy1; ys < y+dy1; ys += dy2 {
					ii, jj := botTime.FindIndex(xs, ys)
					botTime.Set(ii, jj, bottom)
				}
			}
		}
	}
}
