package model

import (
	"fmt"
	"math"

	"seisforward/pkg/grid"
)

// FindMaxTwtIndex returns the column holding the largest bottom-layer
// travel time, and that time.
func (p *SeismicParameters) FindMaxTwtIndex() (iMax, jMax int, maxValue float64) {
	kMax := p.twtGrid.NK() - 1
	for i := 0; i < p.twtGrid.NX(); i++ {
		for j := 0; j < p.twtGrid.NY(); j++ {
			if v := p.twtGrid.Get(i, j, kMax); v > maxValue {
				maxValue = v
				iMax, jMax = i, j
			}
		}
	}
	return iMax, jMax, maxValue
}

// GenerateTwt0AndZ0 builds the trace axes: the time axis twt0, the
// depth axis z0 and, when a timeshift cube is present, the shifted axis
// twts0. For NMO runs the time axis is stretched to bound the longest
// offset arrival and timeSamplesStretch is the usable sample count of
// the corrected output; otherwise it equals len(twt0).
func (p *SeismicParameters) GenerateTwt0AndZ0() (twt0, z0, twts0 []float64, timeSamplesStretch int, err error) {
	if p.settings.Seismic.NMOCorr {
		twt0, timeSamplesStretch, err = p.generateTwt0ForNMO()
		if err != nil {
			return nil, nil, nil, 0, err
		}
		z0 = p.generateZ0ForNMO(twt0)
	} else {
		g := p.geom
		twt0 = cellCentredAxis(g.T0(), g.DT(), g.NT())
		z0 = cellCentredAxis(g.Z0(), g.DZ(), g.NZ())
		timeSamplesStretch = len(twt0)
	}
	if p.twtShift != nil {
		twts0 = p.GenerateTwt0Shift(twt0[0], timeSamplesStretch)
	}
	return twt0, z0, twts0, timeSamplesStretch, nil
}

func cellCentredAxis(origin, step float64, n int) []float64 {
	axis := make([]float64, n)
	for i := 0; i < n; i++ {
		axis[i] = origin + (0.5+float64(i))*step
	}
	return axis
}

// generateTwt0ForNMO sizes the time axis so the longest-offset arrival
// fits, including stretch room above and below. The stretch ratio is
// probed at the column with the deepest reflector.
func (p *SeismicParameters) generateTwt0ForNMO() ([]float64, int, error) {
	g := p.geom
	nt := g.NT()
	dt := g.DT()
	t0 := g.T0()
	twtWavelet := p.TwtWavelet()
	nzrefl := g.ZReflectorCount()
	offsetMax := p.MaxOffset()

	iMax, jMax, maxTwtValue := p.FindMaxTwtIndex()

	var twtxMax float64
	if p.settings.Seismic.PSSeismic {
		twtPPVec := make([]float64, nzrefl)
		twtSSVec := make([]float64, nzrefl)
		vpVec := make([]float64, nzrefl)
		vsVec := make([]float64, nzrefl)
		for k := 0; k < nzrefl; k++ {
			twtPPVec[k] = p.twtPPGrid.Get(iMax, jMax, k)
			twtSSVec[k] = p.twtSSGrid.Get(iMax, jMax, k)
			vpVec[k] = p.vpGrid.Get(iMax, jMax, k)
			vsVec[k] = p.vsGrid.Get(iMax, jMax, k)
		}
		vrmsPPVec := make([]float64, nzrefl)
		vrmsSSVec := make([]float64, nzrefl)
		p.FindVrms(vrmsPPVec, twtPPVec, vpVec, iMax, jMax)
		p.FindVrms(vrmsSSVec, twtSSVec, vsVec, iMax, jMax)

		vrmsPP := vrmsPPVec[nzrefl-1]
		vrmsSS := vrmsSSVec[nzrefl-1]
		twtPPMax := twtPPVec[nzrefl-1]
		twtSSMax := twtSSVec[nzrefl-1]

		start := math.Atan(offsetMax / (vrmsPP * twtPPMax / 1000))
		if start >= 1.0 {
			start = 0.99
		}
		dU := vrmsSS * twtSSMax / 2000
		dD := vrmsPP * twtPPMax / 2000
		vr := vrmsSS / vrmsPP
		y, _, err := FindSinThetaPS(start, offsetMax, dU, dD, vr, 1e-6, snellMaxIter)
		if err != nil {
			return nil, 0, fmt.Errorf("max-offset probe for nmo axis: %w", err)
		}
		thetaSS := math.Asin(vr * y)
		thetaPP := math.Asin(y)
		offsetPP := math.Tan(thetaPP) * dD
		offsetSS := math.Tan(thetaSS) * dU

		twtxPP := math.Sqrt(twtPPMax*twtPPMax/4 + 1e6*offsetPP*offsetPP/(vrmsPP*vrmsPP))
		twtxSS := math.Sqrt(twtSSMax*twtSSMax/4 + 1e6*offsetSS*offsetSS/(vrmsSS*vrmsSS))
		twtxMax = twtxPP + twtxSS + twtWavelet
	} else {
		maxTwtValue += twtWavelet

		twtVec := make([]float64, nzrefl)
		vpVec := make([]float64, nzrefl)
		for k := 0; k < nzrefl; k++ {
			twtVec[k] = p.twtGrid.Get(iMax, jMax, k)
			vpVec[k] = p.vpGrid.Get(iMax, jMax, k)
		}
		vrmsVec := make([]float64, nzrefl)
		p.FindVrms(vrmsVec, twtVec, vpVec, iMax, jMax)
		vrmsMax := vrmsVec[nzrefl-1]

		twtxMax = math.Sqrt(maxTwtValue*maxTwtValue + 1e6*offsetMax*offsetMax/(vrmsMax*vrmsMax))
	}

	stretchFactor := twtxMax / g.TMax()

	tMin := t0
	xtraSamplesTop := 0
	if stretchFactor > 1 {
		tMin = t0 - 2*stretchFactor*twtWavelet
		xtraSamplesTop = int(2 * stretchFactor * twtWavelet / dt)
	}

	timeStretchSamples := nt
	if stretchFactor > 1 {
		tMaxNMO := maxTwtValue + 4*stretchFactor*twtWavelet
		timeStretchSamples = int(math.Ceil((tMaxNMO - tMin) / dt))
		twtxMax += stretchFactor * twtWavelet
	}

	ntSeis := nt
	if twtxMax > tMin+float64(nt)*dt {
		ntSeis = int(math.Ceil((twtxMax - tMin) / dt))
	}

	twt0 := cellCentredAxis(t0-float64(xtraSamplesTop)*dt, dt, ntSeis)
	if timeStretchSamples > len(twt0) {
		timeStretchSamples = len(twt0)
	}
	return twt0, timeStretchSamples, nil
}

// generateZ0ForNMO widens the depth axis in proportion to the time
// stretch, so depth-converted samples from the stretched time axis
// stay covered.
func (p *SeismicParameters) generateZ0ForNMO(twt0 []float64) []float64 {
	g := p.geom
	nz := g.NZ()
	zMin := g.Z0()
	dz := g.DZ()

	factor := 2 * twt0[len(twt0)-1] / g.TMax()
	depthPad := p.TwtWavelet() * p.settings.Elastic.ConstVp[2] / 2000.0
	maxZ := zMin + float64(nz-1)*dz + factor*depthPad
	minZ := zMin - factor*depthPad

	nzSeis := int(math.Ceil((maxZ - minZ) / dz))
	return cellCentredAxis(minZ, dz, nzSeis)
}

// GenerateTwt0Shift pads the time axis so the shifted travel times fit:
// extra samples above when the shift pulls the top up, extra below when
// it pushes the bottom down, measured at the deepest column.
func (p *SeismicParameters) GenerateTwt0Shift(twt0Min float64, nSamples int) []float64 {
	iMax, jMax, _ := p.FindMaxTwtIndex()
	dt := p.geom.DT()

	kMax := p.twtShift.NK() - 1
	ts0 := p.twtShift.Get(iMax, jMax, 0)
	tsMax := p.twtShift.Get(iMax, jMax, kMax)
	kMax = p.twtGrid.NK() - 1
	t0 := p.twtGrid.Get(iMax, jMax, 0)
	tMax := p.twtGrid.Get(iMax, jMax, kMax)

	deltaTop := ts0 - t0
	deltaBot := tsMax - tMax

	nTop := 0
	nBot := 0
	if deltaTop < 0 {
		nTop = int(math.Ceil(-deltaTop / dt))
	}
	if deltaBot > 0 {
		nBot = int(math.Ceil(deltaBot / dt))
	}

	nTot := nTop + nSamples + nBot
	twtsMin := twt0Min - float64(nTop)*dt
	twts0 := make([]float64, nTot)
	for k := 0; k < nTot; k++ {
		twts0[k] = twtsMin + float64(k)*dt
	}
	return twts0
}

// GetSeisLimits bounds, per offset, the twt0 samples the convolution
// can reach: from one wavelet above the first reflector's moveout
// arrival to one wavelet below the last reflector's. Samples outside
// are zeroed to avoid wavelet wrap-around.
func (p *SeismicParameters) GetSeisLimits(twt0, vrmsVec, twtVec, offsets []float64) (nMin, nMax []int) {
	nMin = make([]int, len(offsets))
	nMax = make([]int, len(offsets))
	if len(twt0) == 0 || len(twtVec) == 0 {
		return nMin, nMax
	}
	dt := p.geom.DT()
	t0 := twt0[0]
	twtWavelet := p.TwtWavelet()
	last := len(twtVec) - 1

	for off, offset := range offsets {
		twtxTop := moveoutTime(twtVec[0], offset, vrmsVec[0]) - twtWavelet
		twtxBot := moveoutTime(twtVec[last], offset, vrmsVec[last]) + twtWavelet
		nMin[off] = clampSample(int(math.Floor((twtxTop-t0)/dt)), len(twt0))
		nMax[off] = clampSample(int(math.Ceil((twtxBot-t0)/dt)), len(twt0))
	}
	return nMin, nMax
}

func moveoutTime(twt, offset, vrms float64) float64 {
	return math.Sqrt(twt*twt + 1e6*offset*offset/(vrms*vrms))
}

func clampSample(n, size int) int {
	if n < 0 {
		return 0
	}
	if n >= size {
		return size - 1
	}
	return n
}

// FindTWTxGrid fills twtx with the hyperbolic moveout times
// sqrt(twt^2 + 1e6 offset^2 / vrms^2) for each (layer row, offset).
func FindTWTxGrid(twtx *grid.Grid2D, twtVec, vrmsVec, offsets []float64) {
	for off := 0; off < len(offsets); off++ {
		for k := 0; k < len(twtVec); k++ {
			twtx.Set(k, off, moveoutTime(twtVec[k], offsets[off], vrmsVec[k]))
		}
	}
}

// FindNMOTheta fills thetaGrid with the straight-ray incidence angle
// atan(offset / (vrms twt / 1000)) for each (layer, offset).
func FindNMOTheta(thetaGrid *grid.Grid2D, twtVec, vrmsVec, offsets []float64) {
	for off := 0; off < len(offsets); off++ {
		for k := 0; k < len(twtVec); k++ {
			thetaGrid.Set(k, off, math.Atan(offsets[off]/(vrmsVec[k]*twtVec[k]/1000)))
		}
	}
}
