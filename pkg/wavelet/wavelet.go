// Package wavelet evaluates the source pulse convolved onto reflection
// series: an analytic Ricker wavelet or a tabulated pulse read from
// samples. Offsets are in milliseconds relative to the pulse centre.
package wavelet

import (
	"fmt"
	"math"
)

// Wavelet is the pulse evaluated during convolution.
type Wavelet interface {
	// FindWaveletPoint returns the amplitude at dt milliseconds from
	// the pulse centre.
	FindWaveletPoint(dt float64) float64

	// GetDepthAdjustmentFactor returns the half-window in TWT (ms)
	// outside which the pulse is treated as zero. It also sizes the
	// padding added around time and depth axes.
	GetDepthAdjustmentFactor() float64
}

// Ricker is the classic zero-phase Ricker pulse with a given peak
// frequency in Hz.
type Ricker struct {
	peakFrequency float64
}

// NewRicker returns a Ricker wavelet with the given peak frequency (Hz).
func NewRicker(peakFrequency float64) (*Ricker, error) {
	if peakFrequency <= 0 {
		return nil, fmt.Errorf("ricker peak frequency must be positive, got %f", peakFrequency)
	}
	return &Ricker{peakFrequency: peakFrequency}, nil
}

// PeakFrequency returns the peak frequency in Hz.
func (r *Ricker) PeakFrequency() float64 { return r.peakFrequency }

// FindWaveletPoint evaluates the Ricker pulse at dt ms from centre.
func (r *Ricker) FindWaveletPoint(dt float64) float64 {
	a := math.Pi * r.peakFrequency * dt / 1000.0
	a2 := a * a
	return (1 - 2*a2) * math.Exp(-a2)
}

// GetDepthAdjustmentFactor returns the half-window in ms. At 2.5
// periods from centre the Ricker amplitude is below 1e-8 of peak.
func (r *Ricker) GetDepthAdjustmentFactor() float64 {
	return 2500.0 / r.peakFrequency
}

// Tabulated is a sampled pulse with uniform spacing, evaluated by
// linear interpolation between samples. Sample 0 sits at -Centre ms.
type Tabulated struct {
	samples []float64
	dt      float64
	centre  float64
}

// NewTabulated wraps a sampled pulse. dt is the sample spacing in ms and
// centre the time of the pulse peak relative to the first sample.
func NewTabulated(samples []float64, dt, centre float64) (*Tabulated, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("tabulated wavelet needs at least 2 samples, got %d", len(samples))
	}
	if dt <= 0 {
		return nil, fmt.Errorf("tabulated wavelet sample spacing must be positive, got %f", dt)
	}
	return &Tabulated{samples: samples, dt: dt, centre: centre}, nil
}

// FindWaveletPoint linearly interpolates the table at dt ms from centre.
// Outside the table the pulse is zero.
func (w *Tabulated) FindWaveletPoint(dt float64) float64 {
	pos := (dt + w.centre) / w.dt
	if pos < 0 || pos > float64(len(w.samples)-1) {
		return 0
	}
	i := int(pos)
	if i == len(w.samples)-1 {
		return w.samples[i]
	}
	f := pos - float64(i)
	return w.samples[i]*(1-f) + w.samples[i+1]*f
}

// GetDepthAdjustmentFactor returns the half-window in ms: the longer of
// the two table arms around the centre.
func (w *Tabulated) GetDepthAdjustmentFactor() float64 {
	right := float64(len(w.samples)-1)*w.dt - w.centre
	return math.Max(w.centre, right)
}
