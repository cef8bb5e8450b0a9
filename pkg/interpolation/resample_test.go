package interpolation

import (
	"math"
	"testing"
)

func TestLinear1DReproducesLine(t *testing.T) {
	xIn := []float64{0, 1, 2, 3}
	yIn := []float64{0, 2, 4, 6}
	xOut := []float64{0.5, 1.5, 2.25}

	got, err := Linear1D(xIn, yIn, xOut)
	if err != nil {
		t.Fatalf("Linear1D failed: %v", err)
	}
	want := []float64{1, 3, 4.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("sample %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestLinear1DClampsOutside(t *testing.T) {
	got, err := Linear1D([]float64{1, 2}, []float64{10, 20}, []float64{0, 3})
	if err != nil {
		t.Fatalf("Linear1D failed: %v", err)
	}
	if got[0] != 10 || got[1] != 20 {
		t.Errorf("expected clamped ends [10 20], got %v", got)
	}
}

func TestLinear1DCompactsDuplicates(t *testing.T) {
	// A zero-thickness layer duplicates a knot; the first value wins.
	xIn := []float64{0, 1, 1, 2}
	yIn := []float64{0, 5, 7, 8}
	got, err := Linear1D(xIn, yIn, []float64{1})
	if err != nil {
		t.Fatalf("Linear1D failed: %v", err)
	}
	if got[0] != 5 {
		t.Errorf("expected 5 at duplicated knot, got %f", got[0])
	}
}

func TestSpline1DInterpolatesKnots(t *testing.T) {
	xIn := []float64{0, 1, 2, 3, 4}
	yIn := []float64{0, 1, 0, -1, 0}
	got, err := Spline1D(xIn, yIn, xIn, 0)
	if err != nil {
		t.Fatalf("Spline1D failed: %v", err)
	}
	for i := range xIn {
		if math.Abs(got[i]-yIn[i]) > 1e-9 {
			t.Errorf("knot %d: expected %f, got %f", i, yIn[i], got[i])
		}
	}
}

func TestSpline1DExtrapValue(t *testing.T) {
	xIn := []float64{0, 1, 2}
	yIn := []float64{1, 2, 3}
	got, err := Spline1D(xIn, yIn, []float64{-1, 3}, 0)
	if err != nil {
		t.Fatalf("Spline1D failed: %v", err)
	}
	if got[0] != 0 || got[1] != 0 {
		t.Errorf("expected zero extrapolation, got %v", got)
	}
}

func TestSpline1DDegenerateSupport(t *testing.T) {
	got, err := Spline1D([]float64{5, 5}, []float64{1, 2}, []float64{5}, -9)
	if err != nil {
		t.Fatalf("Spline1D failed: %v", err)
	}
	if got[0] != -9 {
		t.Errorf("single-knot support should yield extrap value, got %f", got[0])
	}
}

func TestLengthMismatch(t *testing.T) {
	if _, err := Linear1D([]float64{1}, []float64{1, 2}, nil); err == nil {
		t.Error("expected error for mismatched knots")
	}
	if _, err := Spline1D([]float64{1}, []float64{1, 2}, nil, 0); err == nil {
		t.Error("expected error for mismatched knots")
	}
}
