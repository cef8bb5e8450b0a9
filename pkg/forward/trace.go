// Package forward generates the synthetic traces: per-column reflection
// series, wavelet convolution, NMO correction, depth conversion and
// timeshift resampling, scheduled over a producer pool feeding one
// ordered writer.
package forward

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"seisforward/pkg/grid"
	"seisforward/pkg/interpolation"
	"seisforward/pkg/model"
)

// TraceResult is the product of one (i, j) column, owned by exactly one
// stage at a time: producer, queue, then writer.
type TraceResult struct {
	I, J   int
	IL, XL int
	X, Y   float64

	// TimeGrid is the prestack gather on twt0; for NMO runs it is the
	// corrected gather and PreNMOTimeGrid holds the uncorrected one.
	TimeGrid       *grid.Grid2D
	PreNMOTimeGrid *grid.Grid2D
	TimeStack      *grid.Grid2D

	DepthGrid      *grid.Grid2D
	DepthStack     *grid.Grid2D
	TimeshiftGrid  *grid.Grid2D
	TimeshiftStack *grid.Grid2D

	// TWTxReg is the regularly sampled moveout matrix (NMO only).
	TWTxReg *grid.Grid2D

	// Zero marks a skipped column; every sample is zero.
	Zero bool

	// MaxSample is the tallest populated sample across offsets after
	// NMO correction, bounding downstream resampling.
	MaxSample int

	// Err carries a producer failure to the writer.
	Err error

	order int
}

// GenerateTraceOk reports whether column (i, j) produces seismic: it
// needs top-time coverage and at least one interior sample differing
// from the reservoir defaults.
func GenerateTraceOk(p *model.SeismicParameters, i, j int) bool {
	s := p.Settings()
	constVp := s.Elastic.ConstVp[1]
	constVs := s.Elastic.ConstVs[1]
	constRho := s.Elastic.ConstRho[1]
	vpGrid := p.VpGrid()
	vsGrid := p.VsGrid()
	rhoGrid := p.RhoGrid()

	if p.TwtGrid().Get(i, j, 0) == grid.Missing {
		return false
	}
	nk := vpGrid.NK()
	for k := 1; k < nk-1; k++ {
		if vpGrid.Get(i, j, k) != constVp ||
			vsGrid.Get(i, j, k) != constVs ||
			rhoGrid.Get(i, j, k) != constRho {
			return true
		}
	}
	return false
}

// addNoiseToReflections adds iid Normal(0, stdDev) samples to every
// reflection coefficient. The seed is a pure function of the trace
// position, so the noise is independent of the thread schedule.
func addNoiseToReflections(seed uint64, stdDev float64, refl *grid.Grid2D) {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: stdDev,
		Src:   rand.NewSource(seed),
	}
	for i := 0; i < refl.NI(); i++ {
		for j := 0; j < refl.NJ(); j++ {
			refl.Set(i, j, refl.Get(i, j)+dist.Rand())
		}
	}
}

// traceSeed derives the per-trace RNG seed from the run seed and the
// trace position.
func traceSeed(p *model.SeismicParameters, i, j int) uint64 {
	nx := uint64(p.SeismicGeometry().NX())
	return p.Settings().Seismic.Seed + uint64(i) + nx*uint64(j)
}

// keepReflections copies the zero-offset column of refl into snapshot
// grid slot.
func keepReflections(p *model.SeismicParameters, refl *grid.Grid2D, i, j, slot int) {
	rGrids := p.RGrids()
	if slot >= len(rGrids) {
		return
	}
	for k := 0; k < refl.NI(); k++ {
		rGrids[slot].Set(i, j, k, refl.Get(k, 0))
	}
}

// GenerateSeismicTrace computes the angle gather of column (i, j)
// without NMO: reflection coefficients per angle, optional noise, and
// convolution along the column's own travel times.
func GenerateSeismicTrace(p *model.SeismicParameters, twtVec, twt0, thetaVec []float64,
	timeGrid *grid.Grid2D, i, j int) {

	s := p.Settings()
	nzrefl := p.SeismicGeometry().ZReflectorCount()
	nt := len(twt0)
	dt := p.SeismicGeometry().DT()
	tMin := twt0[0] - 0.5*dt

	refl := grid.NewGrid2D(nzrefl, len(thetaVec), 0)
	p.FindReflections(refl, thetaVec, i, j)

	if s.Output.Reflections {
		keepReflections(p, refl, i, j, 0)
	}
	if s.Seismic.WhiteNoise {
		addNoiseToReflections(traceSeed(p, i, j), s.Seismic.StdDev, refl)
		if s.Output.Reflections {
			keepReflections(p, refl, i, j, 1)
		}
	}

	nMin := make([]int, len(thetaVec))
	nMax := make([]int, len(thetaVec))
	for t := range thetaVec {
		nMin[t] = 0
		nMax[t] = nt
	}
	twtx := grid.NewGrid2D(nzrefl, len(thetaVec), 0)
	for t := range thetaVec {
		for k := 0; k < nzrefl; k++ {
			twtx.Set(k, t, twtVec[k])
		}
	}
	seisConvolution(p, timeGrid, refl, twtx, i, j, tMin, dt, nMin, nMax)
}

// GenerateNMOSeismicTrace computes the offset gather of column (i, j)
// with NMO: moveout curves, per-offset reflection angles, convolution
// along the moveout trajectories and the stretch correction back onto
// twt0. It returns the tallest populated sample of the corrected
// gather.
func GenerateNMOSeismicTrace(p *model.SeismicParameters, twtVec, twt0, offsetVec []float64,
	timeGrid, nmoTimeGrid, twtxReg *grid.Grid2D, i, j int) (maxSample int, err error) {

	s := p.Settings()
	nzrefl := p.SeismicGeometry().ZReflectorCount()
	dt := p.SeismicGeometry().DT()
	tMin := twt0[0] - 0.5*dt

	var vrmsVec, vrmsVecReg []float64
	thetaGrid := grid.NewGrid2D(nzrefl, len(offsetVec), 0)

	if s.Seismic.PSSeismic {
		vrmsPP, vrmsPPReg, vrmsSS, vrmsSSReg, psErr := p.FindVrmsPosPS(twt0, i, j)
		if psErr != nil {
			return 0, psErr
		}
		// Converted-wave stacking velocity: the geometric mean of the
		// two leg velocities.
		vrmsVec = make([]float64, nzrefl)
		for k := range vrmsVec {
			vrmsVec[k] = math.Sqrt(vrmsPP[k] * vrmsSS[k])
		}
		vrmsVecReg = make([]float64, len(twt0))
		for n := range vrmsVecReg {
			vrmsVecReg[n] = math.Sqrt(vrmsPPReg[n] * vrmsSSReg[n])
		}

		twtPPVec := make([]float64, nzrefl)
		twtSSVec := make([]float64, nzrefl)
		for k := 0; k < nzrefl; k++ {
			twtPPVec[k] = p.TwtPPGrid().Get(i, j, k)
			twtSSVec[k] = p.TwtSSGrid().Get(i, j, k)
		}
		thetaUp := grid.NewGrid2D(nzrefl, len(offsetVec), 0)
		offDown := grid.NewGrid2D(nzrefl, len(offsetVec), 0)
		offUp := grid.NewGrid2D(nzrefl, len(offsetVec), 0)
		// Diverged solves are recorded and their entries zeroed after
		// the reflection pass; the trace itself survives.
		model.FindPSNMOThetaAndOffset(thetaGrid, thetaUp, offDown, offUp,
			twtPPVec, twtSSVec, vrmsPP, vrmsSS, offsetVec)
	} else {
		vrmsVec, vrmsVecReg, err = p.FindVrmsPos(twt0, i, j)
		if err != nil {
			return 0, err
		}
		model.FindNMOTheta(thetaGrid, twtVec, vrmsVec, offsetVec)
	}

	nMin, nMax := p.GetSeisLimits(twt0, vrmsVec, twtVec, offsetVec)

	// Entries whose angle solve diverged carry the missing sentinel;
	// their reflections are zeroed below.
	failed := make([]bool, nzrefl*len(offsetVec))
	for k := 0; k < nzrefl; k++ {
		for off := 0; off < len(offsetVec); off++ {
			if thetaGrid.Get(k, off) == grid.Missing {
				failed[k*len(offsetVec)+off] = true
				thetaGrid.Set(k, off, 0)
			}
		}
	}

	refl := grid.NewGrid2D(nzrefl, len(offsetVec), 0)
	p.FindNMOReflections(refl, thetaGrid, i, j)
	for k := 0; k < nzrefl; k++ {
		for off := 0; off < len(offsetVec); off++ {
			if failed[k*len(offsetVec)+off] {
				refl.Set(k, off, 0)
			}
		}
	}

	if s.Output.Reflections {
		keepReflections(p, refl, i, j, 0)
	}
	if s.Seismic.WhiteNoise {
		addNoiseToReflections(traceSeed(p, i, j), s.Seismic.StdDev, refl)
		if s.Output.Reflections {
			keepReflections(p, refl, i, j, 1)
		}
	}

	twtx := grid.NewGrid2D(nzrefl, len(offsetVec), 0)
	model.FindTWTxGrid(twtx, twtVec, vrmsVec, offsetVec)

	seisConvolution(p, timeGrid, refl, twtx, i, j, tMin, dt, nMin, nMax)

	model.FindTWTxGrid(twtxReg, twt0, vrmsVecReg, offsetVec)

	maxSample = nmoCorrect(twt0, timeGrid, twtxReg, nmoTimeGrid, nMin, nMax)
	return maxSample, nil
}

// seisConvolution builds the gather: for each column and sample in its
// (nMin, nMax) window, the sum of reflections whose arrival falls
// within the wavelet cutoff of the sample time. Columns outside
// top-time coverage stay zero.
func seisConvolution(p *model.SeismicParameters, timeGrid, refl, twtx *grid.Grid2D,
	i, j int, t0, dt float64, nMin, nMax []int) {

	nt := timeGrid.NI()
	nc := refl.NI()
	wav := p.Wavelet()
	scale := p.WaveletScale()
	cutoff := wav.GetDepthAdjustmentFactor()

	x, y, _ := p.ZGrid().FindCenterOfCell(i, j, 0)
	if p.TopTime().IsMissing(p.TopTime().GetZ(x, y)) {
		timeGrid.Fill(0)
		return
	}

	for off := 0; off < refl.NJ(); off++ {
		t := t0 + 0.5*dt
		for n := 0; n < nt; n++ {
			if n > nMin[off] && n < nMax[off] {
				seis := 0.0
				for k := 0; k < nc; k++ {
					if math.Abs(twtx.Get(k, off)-t) < cutoff {
						seis += refl.Get(k, off) * scale * wav.FindWaveletPoint(twtx.Get(k, off)-t)
					}
				}
				timeGrid.Set(n, off, seis)
			} else {
				timeGrid.Set(n, off, 0)
			}
			t += dt
		}
	}
}

// nmoCorrect resamples each offset column from its moveout trajectory
// onto the regular time axis with a cubic spline. Samples beyond the
// valid trajectory span are zero. Returns the tallest populated sample.
func nmoCorrect(tIn []float64, dataIn, tOut, dataOut *grid.Grid2D, nMin, nMax []int) (maxSample int) {
	ntIn := dataIn.NI()
	for off := 0; off < dataIn.NJ(); off++ {
		span := nMax[off] - nMin[off] + 1
		if span <= 0 {
			for k := 0; k < dataOut.NI(); k++ {
				dataOut.Set(k, off, 0)
			}
			continue
		}
		dataVecIn := make([]float64, span)
		tVecIn := make([]float64, span)
		for k := nMin[off]; k <= nMax[off]; k++ {
			dataVecIn[k-nMin[off]] = dataIn.Get(k, off)
			tVecIn[k-nMin[off]] = tIn[k]
		}

		// Evaluate only while the trajectory stays inside the input
		// span; beyond it the output is zero.
		tVecOut := make([]float64, 0, ntIn)
		inside := false
		for k := 0; k < ntIn; k++ {
			tx := tOut.Get(k, off)
			if !inside && tx > tVecIn[0] && tx < tVecIn[span-1] {
				inside = true
			}
			tVecOut = append(tVecOut, tx)
			if inside && tx > tVecIn[span-1] {
				break
			}
		}

		dataVecOut, err := interpolation.Spline1D(tVecIn, dataVecIn, tVecOut, 0)
		if err != nil {
			dataVecOut = make([]float64, len(tVecOut))
		}
		n := len(dataVecOut)
		if n > dataOut.NI() {
			n = dataOut.NI()
		}
		for k := 0; k < n; k++ {
			dataOut.Set(k, off, dataVecOut[k])
		}
		for k := n; k < dataOut.NI(); k++ {
			dataOut.Set(k, off, 0)
		}
		if n > maxSample {
			maxSample = n
		}
	}
	return maxSample
}

// stackGather averages the gather across its offset (or angle) axis
// into a single-column grid.
func stackGather(in, out *grid.Grid2D) {
	inv := 1.0 / float64(in.NJ())
	for k := 0; k < out.NI(); k++ {
		sum := 0.0
		if k < in.NI() {
			for off := 0; off < in.NJ(); off++ {
				sum += in.Get(k, off)
			}
		}
		out.Set(k, 0, sum*inv)
	}
}

// extrapolZandTwtVec builds the (twt, z) support for depth conversion:
// the origin, every reflector, and one synthetic row at the padded
// eclipse bottom travelled at the underburden velocity.
func extrapolZandTwtVec(p *model.SeismicParameters, twtVec []float64, zBot float64, i, j int) (zExt, twtExt []float64) {
	s := p.Settings()
	velBot := s.Elastic.ConstVp[2]
	if s.Seismic.PSSeismic {
		velBot = 0.5 * (s.Elastic.ConstVp[2] + s.Elastic.ConstVs[2])
	}
	nzrefl := len(twtVec)
	zExt = make([]float64, nzrefl+2)
	twtExt = make([]float64, nzrefl+2)
	for k := 0; k < nzrefl; k++ {
		twtExt[k+1] = twtVec[k]
		zExt[k+1] = p.ZGrid().Get(i, j, k)
	}
	zExt[nzrefl+1] = zBot
	twtExt[nzrefl+1] = twtExt[nzrefl] + 2000*(zBot-zExt[nzrefl])/velBot
	return zExt, twtExt
}

// convertSeis resamples a gather from the time axis onto another
// support (depth or shifted time): the target axis is first expressed
// in trace time by linear interpolation, then each column is
// spline-resampled onto it.
func convertSeis(twtVec, twt0, supportVec, outAxis []float64,
	seismic, converted *grid.Grid2D, maxSample int) error {

	if maxSample > seismic.NI() {
		maxSample = seismic.NI()
	}
	if maxSample < 2 {
		converted.Fill(0)
		return nil
	}

	ztReg, err := interpolation.Linear1D(twtVec, supportVec, twt0)
	if err != nil {
		return fmt.Errorf("depth support interpolation: %w", err)
	}
	ztReg = ztReg[:maxSample]

	col := make([]float64, maxSample)
	for off := 0; off < seismic.NJ(); off++ {
		for k := 0; k < maxSample; k++ {
			col[k] = seismic.Get(k, off)
		}
		out, err := interpolation.Spline1D(ztReg, col, outAxis, 0)
		if err != nil {
			return fmt.Errorf("trace resampling: %w", err)
		}
		for k := 0; k < converted.NI(); k++ {
			converted.Set(k, off, out[k])
		}
	}
	return nil
}
