package eclipse

import (
	"math"
	"testing"

	"seisforward/pkg/grid"
)

func flatLayers(depths []float64) func(i, j, k int) float64 {
	return func(i, j, k int) float64 { return depths[k] }
}

func TestBuildBoxGridBasics(t *testing.T) {
	g := BuildBoxGrid(0, 0, 100, 100, 2, 2, 3, flatLayers([]float64{1000, 1010, 1025, 1045}))
	geom := g.Geometry()

	if !geom.IsActive(1, 1, 2) {
		t.Error("expected all cells active")
	}
	if geom.IsActive(2, 0, 0) {
		t.Error("out of range cell must be inactive")
	}
	if !geom.IsPillarActive(2, 2) {
		t.Error("expected pillars active")
	}

	c := geom.FindCellCenterPoint(0, 0, 0)
	if math.Abs(c.X-50) > 1e-9 || math.Abs(c.Y-50) > 1e-9 || math.Abs(c.Z-1005) > 1e-9 {
		t.Errorf("cell centre: got (%f, %f, %f)", c.X, c.Y, c.Z)
	}

	if dz := geom.GetDZ(0, 0, 1); math.Abs(dz-15) > 1e-9 {
		t.Errorf("expected dz=15, got %f", dz)
	}

	if top := geom.FindTopLayer(); top != 0 {
		t.Errorf("expected top layer 0, got %d", top)
	}
	if bot := geom.FindBottomLayer(); bot != 2 {
		t.Errorf("expected bottom layer 2, got %d", bot)
	}
}

func TestFindEnclosingVolume(t *testing.T) {
	g := BuildBoxGrid(500, 700, 50, 25, 4, 2, 1, flatLayers([]float64{0, 10}))
	x0, y0, lx, ly, angle := g.Geometry().FindEnclosingVolume()
	if x0 != 500 || y0 != 700 || lx != 200 || ly != 50 || angle != 0 {
		t.Errorf("enclosing volume: got (%f %f %f %f %f)", x0, y0, lx, ly, angle)
	}
}

func TestParameters(t *testing.T) {
	g := BuildBoxGrid(0, 0, 10, 10, 2, 2, 2, flatLayers([]float64{0, 5, 10}))
	g.AddParameter("VP")
	g.SetParameterValue("VP", 1, 0, 1, 2500)

	if !g.HasParameter("VP") {
		t.Fatal("expected VP parameter")
	}
	if g.HasParameter("VS") {
		t.Error("unexpected VS parameter")
	}

	vp, err := g.GetParameter("VP")
	if err != nil {
		t.Fatalf("GetParameter failed: %v", err)
	}
	if vp[g.CellIndex(1, 0, 1)] != 2500 {
		t.Error("stored parameter value not returned")
	}

	// The returned slice is a copy.
	vp[g.CellIndex(1, 0, 1)] = 0
	if g.ParameterValue("VP", 1, 0, 1) != 2500 {
		t.Error("GetParameter must return a copy")
	}

	if _, err := g.GetParameter("RHO"); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestFindLayerSurfaceFlat(t *testing.T) {
	g := BuildBoxGrid(0, 0, 100, 100, 3, 3, 2, flatLayers([]float64{1000, 1020, 1050}))
	geom := g.Geometry()

	values := grid.NewGrid2D(6, 6, 0)
	geom.FindLayerSurface(values, 0, 0, 50, 50, 0, 0, 0)

	// Every raster node over (and around) the footprint holds the flat
	// top depth; margins are extrapolated.
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if math.Abs(values.Get(i, j)-1000) > 1e-9 {
				t.Fatalf("node (%d,%d): expected 1000, got %f", i, j, values.Get(i, j))
			}
		}
	}

	// Bottom face of layer 1.
	geom.FindLayerSurfaceCornerpoint(values, 1, 1, 50, 50, 0, 0, 0)
	if math.Abs(values.Get(2, 2)-1050) > 1e-9 {
		t.Errorf("expected 1050, got %f", values.Get(2, 2))
	}
}

func TestFindLayerSurfaceTilted(t *testing.T) {
	// Top surface dips along i: z = 1000 + 5*i (pillar index).
	g := BuildBoxGrid(0, 0, 100, 100, 4, 4, 1, func(i, j, k int) float64 {
		return 1000 + 5*float64(i) + 30*float64(k)
	})
	values := grid.NewGrid2D(8, 8, 0)
	g.Geometry().FindLayerSurfaceCornerpoint(values, 0, 0, 50, 50, 0, 0, 0)

	// The sampled surface must dip in the same direction.
	if values.Get(6, 3) <= values.Get(1, 3) {
		t.Errorf("expected dip along i: %f vs %f", values.Get(1, 3), values.Get(6, 3))
	}
}
