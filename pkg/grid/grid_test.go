package grid

import (
	"math"
	"testing"
)

func TestGrid2DAccess(t *testing.T) {
	g := NewGrid2D(3, 4, 1.5)
	if g.NI() != 3 || g.NJ() != 4 {
		t.Fatalf("expected 3x4, got %dx%d", g.NI(), g.NJ())
	}
	if g.Get(2, 3) != 1.5 {
		t.Errorf("expected fill value 1.5, got %f", g.Get(2, 3))
	}
	g.Set(1, 2, 7)
	if g.Get(1, 2) != 7 {
		t.Errorf("expected 7, got %f", g.Get(1, 2))
	}
}

func TestGrid3DCenterAndIndexRoundTrip(t *testing.T) {
	vol := Volume{X0: 100, Y0: 200, LX: 50, LY: 40, Angle: 0.3, ZMin: 0, ZMax: 10}
	g := NewGrid3D(vol, 5, 4, 2, 0)

	for i := 0; i < g.NX(); i++ {
		for j := 0; j < g.NY(); j++ {
			x, y, _ := g.FindCenterOfCell(i, j, 0)
			ii, jj, ok := g.FindIndex(x, y)
			if !ok {
				t.Fatalf("cell centre (%d,%d) reported outside grid", i, j)
			}
			if ii != i || jj != j {
				t.Errorf("round trip (%d,%d) -> (%d,%d)", i, j, ii, jj)
			}
			if !g.IsInside(x, y) {
				t.Errorf("cell centre (%d,%d) not inside", i, j)
			}
		}
	}

	if _, _, ok := g.FindIndex(0, 0); ok {
		t.Error("point far outside grid reported inside")
	}
}

func TestGrid3DRotation(t *testing.T) {
	vol := Volume{X0: 0, Y0: 0, LX: 10, LY: 10, Angle: math.Pi / 2}
	g := NewGrid3D(vol, 10, 10, 1, 0)

	// With a 90 degree rotation the local x axis points along world y.
	x, y, _ := g.FindCenterOfCell(9, 0, 0)
	if math.Abs(x-(-0.5)) > 1e-9 || math.Abs(y-9.5) > 1e-9 {
		t.Errorf("expected (-0.5, 9.5), got (%f, %f)", x, y)
	}
}

func TestRegularSurfaceBilinear(t *testing.T) {
	// Surface z = x over [0,4]x[0,4] with 4x4 nodes.
	s := NewRegularSurface(0, 0, 4, 4, 4, 4, 0, 0)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			x, _ := s.GetXY(i, j)
			s.Set(i, j, x)
		}
	}

	// At interior points GetZ reproduces the plane.
	got := s.GetZ(2.0, 2.0)
	if math.Abs(got-2.0) > 1e-9 {
		t.Errorf("expected 2.0, got %f", got)
	}

	if !s.IsMissing(s.GetZ(-1, 2)) {
		t.Error("expected missing outside surface")
	}
}

func TestRegularSurfaceMissingPropagation(t *testing.T) {
	s := NewRegularSurface(0, 0, 4, 4, 4, 4, 0, 1)
	s.Set(1, 1, Missing)
	if !s.IsMissing(s.GetZ(1.5, 1.5)) {
		t.Error("lookup touching a missing node should be missing")
	}
	if s.IsMissing(s.GetZ(3.5, 3.5)) {
		t.Error("lookup away from missing nodes should be valid")
	}
}

func TestRegularSurfaceAddSkipsMissing(t *testing.T) {
	s := NewRegularSurface(0, 0, 2, 2, 2, 2, 0, 10)
	s.Set(0, 0, Missing)
	s.Add(5)
	if !s.IsMissing(s.Get(0, 0)) {
		t.Error("Add must not shift missing nodes")
	}
	if s.Get(1, 1) != 15 {
		t.Errorf("expected 15, got %f", s.Get(1, 1))
	}
	if s.Min() != 15 || s.Max() != 15 {
		t.Errorf("Min/Max should skip missing, got %f/%f", s.Min(), s.Max())
	}
}
