package regrid

import (
	"seisforward/pkg/grid"
	"seisforward/pkg/model"
)

// VpPostProcess closes the gaps the ray-drop left in each column. The
// first assigned sample from the bottom marks the reservoir bottom:
// samples below it become underburden defaults, or extend the bottom
// value when defaultUnderburden is off; unassigned samples between
// assignments take the reservoir default. Columns with no assignment at
// all are reservoir default throughout their interior.
func VpPostProcess(p *model.SeismicParameters) {
	vpGrid := p.VpGrid()
	vsGrid := p.VsGrid()
	rhoGrid := p.RhoGrid()
	extraGrids := p.ExtraGrids()
	s := p.Settings()
	constVp := s.Elastic.ConstVp
	constVs := s.Elastic.ConstVs
	constRho := s.Elastic.ConstRho
	extraDefaults := s.Elastic.ExtraParameterDefaults
	defaultUnderburden := s.Regrid.DefaultUnderburden

	nk := vpGrid.NK()
	for i := 0; i < vpGrid.NX(); i++ {
		for j := 0; j < vpGrid.NY(); j++ {
			foundBot := false
			for k := nk - 1; k > 0; k-- {
				switch {
				case foundBot && vpGrid.Get(i, j, k) == grid.Missing:
					vpGrid.Set(i, j, k, constVp[1])
					vsGrid.Set(i, j, k, constVs[1])
					rhoGrid.Set(i, j, k, constRho[1])
					for e := range extraGrids {
						extraGrids[e].Set(i, j, k, extraDefaults[e])
					}
				case !foundBot && vpGrid.Get(i, j, k) != grid.Missing:
					foundBot = true
					for kk := nk - 1; kk > k; kk-- {
						if defaultUnderburden {
							vpGrid.Set(i, j, kk, constVp[2])
							vsGrid.Set(i, j, kk, constVs[2])
							rhoGrid.Set(i, j, kk, constRho[2])
							for e := range extraGrids {
								extraGrids[e].Set(i, j, kk, 0)
							}
						} else {
							vpGrid.Set(i, j, kk, vpGrid.Get(i, j, k))
							vsGrid.Set(i, j, kk, vsGrid.Get(i, j, k))
							rhoGrid.Set(i, j, kk, rhoGrid.Get(i, j, k))
							for e := range extraGrids {
								extraGrids[e].Set(i, j, kk, extraGrids[e].Get(i, j, k))
							}
						}
					}
				}
			}
			if !foundBot {
				for k := 1; k < nk; k++ {
					vpGrid.Set(i, j, k, constVp[1])
					vsGrid.Set(i, j, k, constVs[1])
					rhoGrid.Set(i, j, k, constRho[1])
					for e := range extraGrids {
						extraGrids[e].Set(i, j, k, extraDefaults[e])
					}
				}
			}
		}
	}
}
