// Package interpolation resamples trace data between axes: linear for
// travel-time/depth supports and natural cubic splines for seismic
// amplitudes. Input knots may contain duplicates (zero-thickness
// layers); they are compacted before fitting.
package interpolation

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// compactKnots drops knots equal in x to their predecessor, keeping the
// first occurrence. The result is strictly increasing when the input is
// non-decreasing.
func compactKnots(xIn, yIn []float64) ([]float64, []float64) {
	if len(xIn) == 0 {
		return nil, nil
	}
	xs := make([]float64, 1, len(xIn))
	ys := make([]float64, 1, len(yIn))
	xs[0] = xIn[0]
	ys[0] = yIn[0]
	for i := 1; i < len(xIn); i++ {
		if xIn[i] != xIn[i-1] {
			xs = append(xs, xIn[i])
			ys = append(ys, yIn[i])
		}
	}
	return xs, ys
}

// Linear1D resamples (xIn, yIn) onto xOut with piecewise-linear
// interpolation. Outside the support the end values are held.
func Linear1D(xIn, yIn, xOut []float64) ([]float64, error) {
	if len(xIn) != len(yIn) {
		return nil, fmt.Errorf("knot length mismatch: %d vs %d", len(xIn), len(yIn))
	}
	xs, ys := compactKnots(xIn, yIn)
	out := make([]float64, len(xOut))
	if len(xs) == 0 {
		return out, nil
	}
	if len(xs) == 1 {
		for i := range out {
			out[i] = ys[0]
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("linear fit: %w", err)
	}
	last := len(xs) - 1
	for i, x := range xOut {
		switch {
		case x <= xs[0]:
			out[i] = ys[0]
		case x >= xs[last]:
			out[i] = ys[last]
		default:
			out[i] = pl.Predict(x)
		}
	}
	return out, nil
}

// Spline1D resamples (xIn, yIn) onto xOut with a natural cubic spline.
// Outside the support the result is extrapValue.
func Spline1D(xIn, yIn, xOut []float64, extrapValue float64) ([]float64, error) {
	if len(xIn) != len(yIn) {
		return nil, fmt.Errorf("knot length mismatch: %d vs %d", len(xIn), len(yIn))
	}
	xs, ys := compactKnots(xIn, yIn)
	out := make([]float64, len(xOut))
	if len(xs) < 2 {
		for i := range out {
			out[i] = extrapValue
		}
		return out, nil
	}

	var sp interp.NaturalCubic
	if err := sp.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("spline fit: %w", err)
	}
	last := len(xs) - 1
	for i, x := range xOut {
		if x < xs[0] || x > xs[last] {
			out[i] = extrapValue
			continue
		}
		out[i] = sp.Predict(x)
	}
	return out, nil
}
