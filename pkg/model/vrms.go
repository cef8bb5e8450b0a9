package model

import (
	"fmt"
	"math"

	"seisforward/pkg/grid"
	"seisforward/pkg/interpolation"
	"seisforward/pkg/zoeppritz"
)

// FindVrms fills vrmsVec with the RMS (stacking) velocity at each layer
// of column (i, j), from the layer travel times twtVec and interval
// velocities vVec. The water column and the overburden between the sea
// bed and the first reflector enter the sum before the reservoir
// layers. A missing top time marks the whole column missing.
func (p *SeismicParameters) FindVrms(vrmsVec, twtVec, vVec []float64, i, j int) {
	vw := p.settings.Water.Vw
	zw := p.settings.Water.Zw
	twtW := 2000 * zw / vw
	nk := len(twtVec)

	if twtVec[0] == grid.Missing {
		for k := 0; k < nk; k++ {
			vrmsVec[k] = grid.Missing
		}
		return
	}

	vOver := 2000 * (p.zGrid.Get(i, j, 0) - zw) / (twtVec[0] - twtW)
	base := vw*vw*twtW + vOver*vOver*(twtVec[0]-twtW)
	for k := 0; k < nk; k++ {
		sum := base
		for l := 1; l <= k; l++ {
			sum += vVec[l] * vVec[l] * (twtVec[l] - twtVec[l-1])
		}
		vrmsVec[k] = math.Sqrt(sum / twtVec[k])
	}
}

// RegularizeVrms resamples a per-layer Vrms profile onto the regular
// time axis twt0. The support is extended with the water velocity at
// the water-bottom time and an underburden Vrms one wavelet below the
// last reflector, computed with constV.
func (p *SeismicParameters) RegularizeVrms(vrmsVec, twtVec, twt0 []float64, constV float64) ([]float64, error) {
	vw := p.settings.Water.Vw
	zw := p.settings.Water.Zw
	twtW := 2000 * zw / vw
	nk := len(twtVec)
	twtWavelet := p.TwtWavelet()

	vrmsUnder := vrmsVec[nk-1]*vrmsVec[nk-1]*twtVec[nk-1] + constV*constV*twtWavelet
	vrmsUnder /= twtVec[nk-1] + twtWavelet
	vrmsUnder = math.Sqrt(vrmsUnder)

	twtIn := make([]float64, 0, nk+2)
	vrmsIn := make([]float64, 0, nk+2)
	twtIn = append(twtIn, twtW)
	vrmsIn = append(vrmsIn, vw)
	for k := 0; k < nk; k++ {
		if twtVec[k] != twtIn[len(twtIn)-1] {
			twtIn = append(twtIn, twtVec[k])
			vrmsIn = append(vrmsIn, vrmsVec[k])
		}
	}
	twtIn = append(twtIn, twtIn[len(twtIn)-1]+twtWavelet)
	vrmsIn = append(vrmsIn, vrmsUnder)

	return interpolation.Linear1D(twtIn, vrmsIn, twt0)
}

// FindVrmsPos returns the per-layer and regularly sampled Vrms of
// column (i, j) for the PP case, using the P velocities.
func (p *SeismicParameters) FindVrmsPos(twt0 []float64, i, j int) (vrmsVec, vrmsVecReg []float64, err error) {
	nzrefl := p.geom.ZReflectorCount()
	twtVec := make([]float64, nzrefl)
	vVec := make([]float64, nzrefl)
	for k := 0; k < nzrefl; k++ {
		twtVec[k] = p.twtGrid.Get(i, j, k)
		vVec[k] = p.vpGrid.Get(i, j, k)
	}
	vrmsVec = make([]float64, nzrefl)
	p.FindVrms(vrmsVec, twtVec, vVec, i, j)
	vrmsVecReg, err = p.RegularizeVrms(vrmsVec, twtVec, twt0, p.settings.Elastic.ConstVp[2])
	if err != nil {
		return nil, nil, fmt.Errorf("regularize vrms at (%d, %d): %w", i, j, err)
	}
	return vrmsVec, vrmsVecReg, nil
}

// FindVrmsPosPS returns the per-leg Vrms profiles of column (i, j) for
// the PS case: the P leg over twtPP with vp, the S leg over twtSS with
// vs, each with its regular sampling on twt0.
func (p *SeismicParameters) FindVrmsPosPS(twt0 []float64, i, j int) (vrmsPP, vrmsPPReg, vrmsSS, vrmsSSReg []float64, err error) {
	nzrefl := p.geom.ZReflectorCount()
	twtPPVec := make([]float64, nzrefl)
	twtSSVec := make([]float64, nzrefl)
	vpVec := make([]float64, nzrefl)
	vsVec := make([]float64, nzrefl)
	for k := 0; k < nzrefl; k++ {
		twtPPVec[k] = p.twtPPGrid.Get(i, j, k)
		twtSSVec[k] = p.twtSSGrid.Get(i, j, k)
		vpVec[k] = p.vpGrid.Get(i, j, k)
		vsVec[k] = p.vsGrid.Get(i, j, k)
	}
	vrmsPP = make([]float64, nzrefl)
	vrmsSS = make([]float64, nzrefl)
	p.FindVrms(vrmsPP, twtPPVec, vpVec, i, j)
	p.FindVrms(vrmsSS, twtSSVec, vsVec, i, j)

	vrmsPPReg, err = p.RegularizeVrms(vrmsPP, twtPPVec, twt0, p.settings.Elastic.ConstVp[2])
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("regularize pp vrms at (%d, %d): %w", i, j, err)
	}
	vrmsSSReg, err = p.RegularizeVrms(vrmsSS, twtSSVec, twt0, p.settings.Elastic.ConstVs[2])
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("regularize ss vrms at (%d, %d): %w", i, j, err)
	}
	return vrmsPP, vrmsPPReg, vrmsSS, vrmsSSReg, nil
}

// NewEvaluator returns the reflection evaluator matching the seismic
// mode of the run.
func (p *SeismicParameters) NewEvaluator() zoeppritz.Evaluator {
	if p.settings.Seismic.PSSeismic {
		return zoeppritz.NewPS()
	}
	return zoeppritz.NewPP()
}

// FindReflections fills r (nzrefl rows, one column per angle) with the
// reflection coefficients of column (i, j) at fixed incidence angles.
func (p *SeismicParameters) FindReflections(r *grid.Grid2D, thetaVec []float64, i, j int) {
	ev := p.NewEvaluator()
	nzrefl := p.geom.ZReflectorCount()

	vpVec := make([]float64, nzrefl+1)
	vsVec := make([]float64, nzrefl+1)
	rhoVec := make([]float64, nzrefl+1)
	for k := 0; k <= nzrefl; k++ {
		vpVec[k] = p.vpGrid.Get(i, j, k)
		vsVec[k] = p.vsGrid.Get(i, j, k)
		rhoVec[k] = p.rhoGrid.Get(i, j, k)
	}

	for t, theta := range thetaVec {
		ev.ComputeConstants(theta)
		for k := 0; k < nzrefl; k++ {
			r.Set(k, t, reflectionAt(ev, vpVec, vsVec, rhoVec, k))
		}
	}
}

// FindNMOReflections fills r with reflection coefficients where each
// (layer, offset) pair has its own incidence angle from thetaGrid.
func (p *SeismicParameters) FindNMOReflections(r, thetaGrid *grid.Grid2D, i, j int) {
	ev := p.NewEvaluator()
	nzrefl := p.geom.ZReflectorCount()

	vpVec := make([]float64, nzrefl+1)
	vsVec := make([]float64, nzrefl+1)
	rhoVec := make([]float64, nzrefl+1)
	for k := 0; k <= nzrefl; k++ {
		vpVec[k] = p.vpGrid.Get(i, j, k)
		vsVec[k] = p.vsGrid.Get(i, j, k)
		rhoVec[k] = p.rhoGrid.Get(i, j, k)
	}

	for off := 0; off < r.NJ(); off++ {
		for k := 0; k < nzrefl; k++ {
			ev.ComputeConstants(thetaGrid.Get(k, off))
			r.Set(k, off, reflectionAt(ev, vpVec, vsVec, rhoVec, k))
		}
	}
}

func reflectionAt(ev zoeppritz.Evaluator, vpVec, vsVec, rhoVec []float64, k int) float64 {
	diffVp := vpVec[k+1] - vpVec[k]
	meanVp := 0.5 * (vpVec[k+1] + vpVec[k])
	diffVs := vsVec[k+1] - vsVec[k]
	meanVs := 0.5 * (vsVec[k+1] + vsVec[k])
	diffRho := rhoVec[k+1] - rhoVec[k]
	meanRho := 0.5 * (rhoVec[k+1] + rhoVec[k])
	return ev.GetReflection(diffVp, meanVp, diffRho, meanRho, diffVs, meanVs)
}
