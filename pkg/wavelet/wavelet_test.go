package wavelet

import (
	"math"
	"testing"
)

func TestRickerShape(t *testing.T) {
	r, err := NewRicker(30)
	if err != nil {
		t.Fatalf("NewRicker failed: %v", err)
	}

	// Unit peak at centre, symmetric, zero crossing where 2a^2 = 1.
	if got := r.FindWaveletPoint(0); math.Abs(got-1) > 1e-12 {
		t.Errorf("expected peak 1 at centre, got %f", got)
	}
	if math.Abs(r.FindWaveletPoint(7)-r.FindWaveletPoint(-7)) > 1e-12 {
		t.Error("Ricker must be symmetric")
	}
	tZero := 1000.0 / (math.Pi * 30 * math.Sqrt2)
	if got := r.FindWaveletPoint(tZero); math.Abs(got) > 1e-9 {
		t.Errorf("expected zero crossing at %f ms, got amplitude %g", tZero, got)
	}

	// Negligible beyond the cutoff half-window.
	cut := r.GetDepthAdjustmentFactor()
	if got := math.Abs(r.FindWaveletPoint(cut)); got > 1e-8 {
		t.Errorf("amplitude at cutoff should be negligible, got %g", got)
	}
}

func TestRickerValidation(t *testing.T) {
	if _, err := NewRicker(0); err == nil {
		t.Error("expected error for zero frequency")
	}
	if _, err := NewRicker(-5); err == nil {
		t.Error("expected error for negative frequency")
	}
}

func TestTabulatedInterpolation(t *testing.T) {
	w, err := NewTabulated([]float64{0, 1, 0}, 10, 10)
	if err != nil {
		t.Fatalf("NewTabulated failed: %v", err)
	}

	if got := w.FindWaveletPoint(0); math.Abs(got-1) > 1e-12 {
		t.Errorf("expected 1 at centre, got %f", got)
	}
	if got := w.FindWaveletPoint(-5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected 0.5 midway, got %f", got)
	}
	if got := w.FindWaveletPoint(100); got != 0 {
		t.Errorf("expected 0 outside table, got %f", got)
	}
	if got := w.GetDepthAdjustmentFactor(); got != 10 {
		t.Errorf("expected half-window 10 ms, got %f", got)
	}
}

func TestTabulatedValidation(t *testing.T) {
	if _, err := NewTabulated([]float64{1}, 1, 0); err == nil {
		t.Error("expected error for single sample")
	}
	if _, err := NewTabulated([]float64{1, 2}, 0, 0); err == nil {
		t.Error("expected error for zero spacing")
	}
}
