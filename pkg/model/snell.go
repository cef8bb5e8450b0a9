package model

import (
	"fmt"
	"math"

	"seisforward/pkg/grid"
)

const (
	snellTol     = 1e-5
	snellMaxIter = 10
)

// FindSinThetaPS solves the two-leg Snell equation for a converted
// wave: find y = sin(theta_down) such that
//
//	offset = dD y / sqrt(1 - y^2) + dU vr y / sqrt(1 - vr^2 y^2)
//
// with dD and dU the downward and upward leg half-distances and vr the
// Vs/Vp velocity ratio. Newton iteration with the analytic derivative
//
//	f'(y) = dD / (1 - y^2)^{3/2} + dU vr / (1 - vr^2 y^2)^{3/2}
//
// starting from startValue. Iterates exceeding |y| > 1 restart at 0.1;
// a vanishing derivative aborts. Returns the solution and the number of
// iterations used.
func FindSinThetaPS(startValue, offset, dU, dD, vr, tol float64, maxIter int) (float64, int, error) {
	yOld := startValue
	var yNew float64

	for i := 0; i < maxIter; i++ {
		fy := -offset + dD*yOld/math.Sqrt(1-yOld*yOld) + dU*vr*yOld/math.Sqrt(1-vr*vr*yOld*yOld)
		d1 := 1 - yOld*yOld
		d2 := 1 - vr*vr*yOld*yOld
		fDer := dD/(d1*math.Sqrt(d1)) + dU*vr/(d2*math.Sqrt(d2))

		if fDer == 0 || math.IsNaN(fDer) || math.IsInf(fDer, 0) {
			return 0, i, fmt.Errorf("newton iteration for converted-wave angle: zero or invalid derivative at y=%f", yOld)
		}
		yNew = yOld - fy/fDer

		if math.Abs(yNew) > 1.0 {
			yNew = 0.1
		}
		if math.Abs(yNew-yOld) < tol {
			return yNew, i + 1, nil
		}
		yOld = yNew
	}
	return yNew, maxIter, nil
}

// FindPSNMOThetaAndOffset solves, for each (layer, offset) pair, the
// converted-wave angles and per-leg surface offsets of column data
// given by the PP and SS leg times and Vrms profiles. thetaDown and
// thetaUp receive the angles; offsetDown and offsetUp the leg offsets.
// Each offset column warm-starts from the previous layer's solution.
// Columns where the solve diverges are reported once and marked with
// the missing sentinel.
func FindPSNMOThetaAndOffset(thetaDown, thetaUp, offsetDown, offsetUp *grid.Grid2D,
	twtPPVec, twtSSVec, vrmsPPVec, vrmsSSVec, offsets []float64) error {

	var firstErr error
	for off := 0; off < len(offsets); off++ {
		start := math.Atan(offsets[off] / (vrmsPPVec[0] * twtPPVec[0] / 1000))
		if start >= 1.0 {
			start = 0.99
		}
		failed := false
		for k := 0; k < len(twtPPVec); k++ {
			if failed {
				thetaDown.Set(k, off, grid.Missing)
				thetaUp.Set(k, off, grid.Missing)
				offsetDown.Set(k, off, 0)
				offsetUp.Set(k, off, 0)
				continue
			}
			dU := vrmsSSVec[k] * twtSSVec[k] / 2000
			dD := vrmsPPVec[k] * twtPPVec[k] / 2000
			vr := vrmsSSVec[k] / vrmsPPVec[k]
			y, _, err := FindSinThetaPS(start, offsets[off], dU, dD, vr, snellTol, snellMaxIter)
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("offset %f layer %d: %w", offsets[off], k, err)
				}
				failed = true
				thetaDown.Set(k, off, grid.Missing)
				thetaUp.Set(k, off, grid.Missing)
				offsetDown.Set(k, off, 0)
				offsetUp.Set(k, off, 0)
				continue
			}
			tDown := math.Asin(y)
			tUp := math.Asin(vr * y)
			thetaDown.Set(k, off, tDown)
			thetaUp.Set(k, off, tUp)
			offsetDown.Set(k, off, math.Tan(tDown)*dD)
			offsetUp.Set(k, off, math.Tan(tUp)*dU)
			start = y
		}
	}
	return firstErr
}
